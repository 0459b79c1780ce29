package animal

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/distribution"
)

// Status defines whether an animal can receive donations
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusAdopted   Status = "ADOPTED"
	StatusInactive  Status = "INACTIVE"
)

// CareDistribution is the per-animal monthly breakdown across the fixed care
// categories: one goal and one running total per category, plus the timestamp
// of the last goal reset. Running totals only grow within a reset window and
// are zeroed atomically with the reset timestamp.
type CareDistribution struct {
	MedicalGoal      int64     `json:"medical_goal"`
	MedicalRaised    int64     `json:"medical_raised"`
	FoodGoal         int64     `json:"food_goal"`
	FoodRaised       int64     `json:"food_raised"`
	PreventiveGoal   int64     `json:"preventive_goal"`
	PreventiveRaised int64     `json:"preventive_raised"`
	OtherGoal        int64     `json:"other_goal"`
	OtherRaised      int64     `json:"other_raised"`
	LastResetAt      time.Time `json:"last_reset_at"`
}

// Weights returns the category goals as distribution weights
func (c CareDistribution) Weights() distribution.Weights {
	return distribution.Weights{
		Medical:    c.MedicalGoal,
		Food:       c.FoodGoal,
		Preventive: c.PreventiveGoal,
		Other:      c.OtherGoal,
	}
}

// Animal represents an adoptable animal that can receive direct donations.
// Monetary fields are in currency minor units.
type Animal struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	ShelterName string           `json:"shelter_name"`
	Status      Status           `json:"status"`
	Care        CareDistribution `json:"care"`

	// MonthlyTotal accumulates full donation amounts and is zeroed on goal
	// reset. LifetimeTotal accumulates the same base but never resets.
	MonthlyTotal  int64 `json:"monthly_total"`
	LifetimeTotal int64 `json:"lifetime_total"`

	Version   int       `json:"version"` // For optimistic locking
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcceptingDonations reports whether the animal is open for donations
func (a *Animal) AcceptingDonations() bool {
	return a.Status == StatusAvailable
}

// GoalResetDue reports whether the rolling reset window has elapsed
func (a *Animal) GoalResetDue(now time.Time, window time.Duration) bool {
	return now.Sub(a.Care.LastResetAt) >= window
}

// ResetGoals zeroes all category running totals and the monthly counter, and
// stamps the reset time. Goals and the lifetime counter are untouched.
func (a *Animal) ResetGoals(now time.Time) {
	a.Care.MedicalRaised = 0
	a.Care.FoodRaised = 0
	a.Care.PreventiveRaised = 0
	a.Care.OtherRaised = 0
	a.MonthlyTotal = 0
	a.Care.LastResetAt = now
	a.touch(now)
}

// ApplyDonation folds a confirmed donation into the animal's counters. The
// category totals receive the distributed post-fee share; the monthly and
// lifetime counters receive the full donation amount. The two bases are
// intentionally different: category totals track what the shelter actually
// received, the amount counters report gross donation volume.
func (a *Animal) ApplyDonation(amount int64, share distribution.Allocation, now time.Time) {
	a.Care.MedicalRaised += share.Medical
	a.Care.FoodRaised += share.Food
	a.Care.PreventiveRaised += share.Preventive
	a.Care.OtherRaised += share.Other
	a.MonthlyTotal += amount
	a.LifetimeTotal += amount
	a.touch(now)
}

// ReverseDonation rolls the monthly and lifetime counters back by the refunded
// shelter share, floored at zero so out-of-order operations (a refund landing
// after a goal reset) never drive a total negative.
func (a *Animal) ReverseDonation(share int64, now time.Time) {
	a.MonthlyTotal -= share
	if a.MonthlyTotal < 0 {
		a.MonthlyTotal = 0
	}
	a.LifetimeTotal -= share
	if a.LifetimeTotal < 0 {
		a.LifetimeTotal = 0
	}
	a.touch(now)
}

func (a *Animal) touch(now time.Time) {
	a.UpdatedAt = now
	a.Version++
}
