package model

import "time"

// EvaluationRequest is a queued request to have one candidate skill
// evaluated. The queue builder creates it; the dispatcher matches it to
// evaluators by creating invites.
//
// EvaluatorID stays nil even after invites are issued: a request can hold
// several simultaneous invites, so "matched" is a property of the invite
// table, not a flag here. A still-pending request may receive additional
// invites on a later dispatch pass once evaluator capacity frees up.
type EvaluationRequest struct {
	ID               string    `json:"id"`
	CandidateSkillID string    `json:"candidate_skill_id"`
	Priority         int       `json:"priority"` // tier rank; lower is served first
	EvaluatorID      *string   `json:"evaluator_id,omitempty"`
	Pending          bool      `json:"pending"`
	Language         string    `json:"language"`
	CreatedAt        time.Time `json:"created_at"`
}

// MatchableRequest is an EvaluationRequest joined with the skill it is
// for, as the dispatcher consumes it. SkillID comes from the underlying
// CandidateSkill row.
type MatchableRequest struct {
	EvaluationRequest
	SkillID string `json:"skill_id"`
}
