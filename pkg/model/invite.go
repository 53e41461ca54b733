package model

import "time"

// InviteStatus represents the lifecycle state of an Invite.
type InviteStatus string

const (
	// InvitePending means the evaluator has not responded yet.
	InvitePending InviteStatus = "PENDING"
	// InviteAccepted means the evaluator took the evaluation.
	InviteAccepted InviteStatus = "ACCEPTED"
	// InviteDeclined means the evaluator refused, or the invite expired.
	InviteDeclined InviteStatus = "DECLINED"
)

// String returns the string representation of the invite status.
func (s InviteStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the invite can no longer change state.
func (s InviteStatus) IsTerminal() bool {
	return s == InviteAccepted || s == InviteDeclined
}

// ValidInviteTransitions defines the allowed status transitions.
// Expiry is the PENDING → DECLINED edge taken by the dispatcher's sweep.
var ValidInviteTransitions = map[InviteStatus][]InviteStatus{
	InvitePending: {InviteAccepted, InviteDeclined},
}

// CanTransitionTo returns true if moving from the current status to next is valid.
func (s InviteStatus) CanTransitionTo(next InviteStatus) bool {
	for _, allowed := range ValidInviteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Invite offers one EvaluationRequest to one evaluator, with a response
// deadline. The (EvaluatorID, RequestID) pair is unique: re-creating an
// existing pair is a no-op at the store level.
type Invite struct {
	ID          string       `json:"id"`
	EvaluatorID string       `json:"evaluator_id"`
	RequestID   string       `json:"request_id"`
	Status      InviteStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
	DecidedAt   *time.Time   `json:"decided_at,omitempty"`
}

// Expired reports whether a still-pending invite is past its deadline.
func (i *Invite) Expired(now time.Time) bool {
	return i.Status == InvitePending && now.After(i.ExpiresAt)
}
