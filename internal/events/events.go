package events

import "context"

// Streams
const (
	StreamRegistry = "events:registry"
	StreamCampaign = "events:campaign"
)

// Event types
const (
	EventProposalSubmitted    = "proposal_submitted"
	EventProposalReviewed     = "proposal_reviewed"
	EventLedgerDeployed       = "ledger_deployed"
	EventReviewerChanged      = "reviewer_changed"
	EventContributionRecorded = "contribution_recorded"
	EventFundsClaimed         = "funds_claimed"
	EventRefundProcessed      = "refund_processed"
	EventCampaignEnded        = "campaign_ended"
	EventCampaignWindowClosed = "campaign_window_closed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
