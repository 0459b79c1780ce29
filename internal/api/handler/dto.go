package handler

// CreateIntentRequest represents a request to start a donation
type CreateIntentRequest struct {
	DonorID    string `json:"donor_id" binding:"required,uuid"`
	TargetKind string `json:"target_kind" binding:"required,oneof=ANIMAL CAMPAIGN"`
	TargetID   string `json:"target_id" binding:"required,uuid"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

// ConfirmRequest represents a request to settle a pending donation
type ConfirmRequest struct {
	DonorID   string `json:"donor_id" binding:"required,uuid"`
	IntentRef string `json:"intent_ref" binding:"required"`
}

// RefundRequest represents a refund request against a completed donation.
// Amount zero (or omitted) refunds the remaining unrefunded portion.
type RefundRequest struct {
	DonorID   string `json:"donor_id" binding:"required,uuid"`
	Amount    int64  `json:"amount" binding:"min=0"`
	Reason    string `json:"reason" binding:"required"`
	Initiator string `json:"initiator" binding:"required,oneof=DONOR SHELTER"`
}

// AllocationResponse represents a care category split in API responses
type AllocationResponse struct {
	Medical    int64 `json:"medical"`
	Food       int64 `json:"food"`
	Preventive int64 `json:"preventive"`
	Other      int64 `json:"other"`
}

// DonationResponse represents a donation in API responses
type DonationResponse struct {
	ID             string              `json:"id"`
	DonorID        string              `json:"donor_id"`
	TargetKind     string              `json:"target_kind"`
	TargetID       string              `json:"target_id"`
	Amount         int64               `json:"amount"`
	Currency       string              `json:"currency"`
	Status         string              `json:"status"`
	FeeAmount      int64               `json:"fee_amount"`
	FeeBps         int32               `json:"fee_bps"`
	ShelterShare   int64               `json:"shelter_share"`
	PointsAwarded  int64               `json:"points_awarded"`
	Distribution   *AllocationResponse `json:"distribution,omitempty"`
	RefundedAmount int64               `json:"refunded_amount,omitempty"`
	RefundReason   string              `json:"refund_reason,omitempty"`
	CreatedAt      string              `json:"created_at"`
	CompletedAt    string              `json:"completed_at,omitempty"`
	RefundedAt     string              `json:"refunded_at,omitempty"`
}

// IntentResponse represents a freshly created donation intent
type IntentResponse struct {
	Donation     DonationResponse `json:"donation"`
	IntentRef    string           `json:"intent_ref"`
	ClientSecret string           `json:"client_secret"`
}

// ConfirmResponse represents the outcome of a donation confirmation
type ConfirmResponse struct {
	Donation          DonationResponse `json:"donation"`
	TargetName        string           `json:"target_name"`
	ShelterName       string           `json:"shelter_name"`
	CampaignCompleted bool             `json:"campaign_completed,omitempty"`
	RewardBalance     int64            `json:"reward_balance"`
}

// RewardEntryResponse represents one reward ledger movement
type RewardEntryResponse struct {
	ID           string `json:"id"`
	Delta        int64  `json:"delta"`
	Kind         string `json:"kind"`
	DonationID   string `json:"donation_id,omitempty"`
	Description  string `json:"description"`
	BalanceAfter int64  `json:"balance_after"`
	CreatedAt    string `json:"created_at"`
}

// RewardHistoryResponse represents a donor's reward balance and ledger page
type RewardHistoryResponse struct {
	DonorID string                `json:"donor_id"`
	Balance int64                 `json:"balance"`
	Entries []RewardEntryResponse `json:"entries"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
