package model

import "time"

// Plan identifies a subscription tier.
type Plan string

const (
	PlanPremium  Plan = "premium"
	PlanStandard Plan = "standard"
	PlanFree     Plan = "free"
)

// Subscription ties a candidate to a plan. Only active, fully paid
// subscriptions are admitted to the evaluation queue.
type Subscription struct {
	ID             string    `json:"id"`
	CandidateID    string    `json:"candidate_id"`
	Plan           Plan      `json:"plan"`
	Active         bool      `json:"active"`
	PaymentPending bool      `json:"payment_pending"`
	CreatedAt      time.Time `json:"created_at"`
}

// TierRank maps a plan to its queue admission rank. Lower rank is served
// first. The ordered tier table is pipeline configuration, not a constant:
// plans can be reprioritized without touching the queue builder.
type TierRank struct {
	Plan Plan
	Rank int
}
