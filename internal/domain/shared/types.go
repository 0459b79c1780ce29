package shared

// DonationKind identifies what a donation is funding
type DonationKind string

const (
	DonationKindAnimal   DonationKind = "ANIMAL"
	DonationKindCampaign DonationKind = "CAMPAIGN"
)

// DonationStatus defines donation lifecycle states
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"
	DonationStatusCompleted DonationStatus = "COMPLETED"
	DonationStatusRefunded  DonationStatus = "REFUNDED"
	DonationStatusFailed    DonationStatus = "FAILED"
)

// MovementKind defines reward ledger movement categories
type MovementKind string

const (
	MovementKindDonationCredit MovementKind = "DONATION_CREDIT"
	MovementKindRefundDebit    MovementKind = "REFUND_DEBIT"
	MovementKindBonus          MovementKind = "BONUS"
)

// RefundInitiator identifies who requested a refund
type RefundInitiator string

const (
	RefundInitiatorDonor   RefundInitiator = "DONOR"
	RefundInitiatorShelter RefundInitiator = "SHELTER"
)

// EventType defines donation event categories published to downstream consumers
type EventType string

const (
	EventTypeDonationCompleted EventType = "donation.completed"
	EventTypeDonationRefunded  EventType = "donation.refunded"
)

// OutboxStatus defines event publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
