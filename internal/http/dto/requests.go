package dto

import "time"

type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	AccountID string `json:"account_id"`
	Password  string `json:"password"`
}

type SubmitProposalRequest struct {
	MinTarget   uint64    `json:"min_target"`
	MaxTarget   uint64    `json:"max_target"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

type ReviewProposalRequest struct {
	Approve bool `json:"approve"`
}

type TransferReviewerRequest struct {
	NewReviewer string `json:"new_reviewer"`
}

type ContributeRequest struct {
	Amount      uint64 `json:"amount"`
	SourceAsset string `json:"source_asset"`
}
