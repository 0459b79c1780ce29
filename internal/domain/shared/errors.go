package shared

import "fmt"

// ErrImplausibleTotal indicates a computed running total crossed the configured
// plausibility ceiling. Treated as fatal for the operation: the surrounding
// transaction must roll back rather than persist a corrupted total.
type ErrImplausibleTotal struct {
	Counter string
	Value   int64
	Ceiling int64
}

func (e ErrImplausibleTotal) Error() string {
	return fmt.Sprintf("implausible %s total %d exceeds ceiling %d", e.Counter, e.Value, e.Ceiling)
}

// Is matches any ErrImplausibleTotal regardless of counter and values
func (e ErrImplausibleTotal) Is(target error) bool {
	_, ok := target.(ErrImplausibleTotal)
	return ok
}
