package model

import "time"

// NotificationKind classifies what a notification is about.
type NotificationKind string

const (
	// KindNewSkillAvailable tells an evaluator a skill evaluation is
	// waiting for them. Aggregated into digest emails.
	KindNewSkillAvailable NotificationKind = "new-skill-available"
)

// Notification is a pending in-app/email event for one user acting under
// one profile. EmailSent flips to true once the digest aggregator has
// attempted delivery for its group; the aggregator never retries a send.
type Notification struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	ProfileID   string           `json:"profile_id"`
	ProfileKind ProfileKind      `json:"profile_kind"`
	Kind        NotificationKind `json:"kind"`
	ReferenceID string           `json:"reference_id"` // the EvaluationRequest id
	EmailSent   bool             `json:"email_sent"`
	CreatedAt   time.Time        `json:"created_at"`
}
