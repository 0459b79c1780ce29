package campaign

import (
	"time"

	"github.com/google/uuid"
)

// Status defines campaign lifecycle states
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Campaign is a time-boxed funding goal for a shelter. Monetary fields are in
// currency minor units.
type Campaign struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	ShelterName   string    `json:"shelter_name"`
	GoalAmount    int64     `json:"goal_amount"`
	RaisedAmount  int64     `json:"raised_amount"`
	Status        Status    `json:"status"`
	PriorityTier  int       `json:"priority_tier"`  // 1-4, drives the fee surcharge
	DurationWeeks int       `json:"duration_weeks"` // 1-4, drives the fee surcharge
	EndsAt        time.Time `json:"ends_at"`
	Version       int       `json:"version"` // For optimistic locking
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AcceptingDonations reports whether the campaign can receive donations now
func (c *Campaign) AcceptingDonations(now time.Time) bool {
	return c.Status == StatusActive && now.Before(c.EndsAt)
}

// AddFunds adds the shelter share of a confirmed donation to the running
// total. The status flips to COMPLETED the first time the total reaches the
// goal and never reverts; the flip is only ever evaluated while still ACTIVE.
// Returns whether this call completed the campaign.
func (c *Campaign) AddFunds(share int64, now time.Time) bool {
	c.RaisedAmount += share
	c.touch(now)
	if c.Status == StatusActive && c.RaisedAmount >= c.GoalAmount {
		c.Status = StatusCompleted
		return true
	}
	return false
}

// ReverseFunds rolls the running total back by a refunded shelter share,
// floored at zero. The completion flip is monotonic and is not re-evaluated.
func (c *Campaign) ReverseFunds(share int64, now time.Time) {
	c.RaisedAmount -= share
	if c.RaisedAmount < 0 {
		c.RaisedAmount = 0
	}
	c.touch(now)
}

func (c *Campaign) touch(now time.Time) {
	c.UpdatedAt = now
	c.Version++
}
