// Package distribution splits a monetary amount across the fixed set of care
// categories in proportion to per-category goal weights. Amounts are in
// currency minor units and allocations always sum exactly to the input.
package distribution

// Weights holds the per-category goal weights used to split an amount.
// A zero total weight yields an all-zero allocation.
type Weights struct {
	Medical    int64
	Food       int64
	Preventive int64
	Other      int64
}

// Total returns the sum of all category weights
func (w Weights) Total() int64 {
	return w.Medical + w.Food + w.Preventive + w.Other
}

// Allocation is the result of splitting an amount across care categories
type Allocation struct {
	Medical    int64 `json:"medical"`
	Food       int64 `json:"food"`
	Preventive int64 `json:"preventive"`
	Other      int64 `json:"other"`
}

// Total returns the sum of all allocated amounts
func (a Allocation) Total() int64 {
	return a.Medical + a.Food + a.Preventive + a.Other
}

// Split allocates amount across categories proportionally to weights using the
// largest remainder method, so the allocation sums exactly to amount. Negative
// weights are treated as zero. If the total weight is zero, or amount is not
// positive, every category receives zero.
func Split(amount int64, w Weights) Allocation {
	if w.Medical < 0 {
		w.Medical = 0
	}
	if w.Food < 0 {
		w.Food = 0
	}
	if w.Preventive < 0 {
		w.Preventive = 0
	}
	if w.Other < 0 {
		w.Other = 0
	}

	total := w.Total()
	if total <= 0 || amount <= 0 {
		return Allocation{}
	}

	weights := [4]int64{w.Medical, w.Food, w.Preventive, w.Other}
	var shares [4]int64
	var remainders [4]int64
	var allocated int64

	for i, weight := range weights {
		shares[i] = amount * weight / total
		remainders[i] = amount * weight % total
		allocated += shares[i]
	}

	// Hand out the rounding leftover one minor unit at a time, largest
	// remainder first. Ties resolve in fixed category order.
	for leftover := amount - allocated; leftover > 0; leftover-- {
		best := 0
		for i := 1; i < len(remainders); i++ {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		shares[best]++
		remainders[best] = -1
	}

	return Allocation{
		Medical:    shares[0],
		Food:       shares[1],
		Preventive: shares[2],
		Other:      shares[3],
	}
}
