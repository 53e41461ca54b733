package model

import "time"

// CandidateSkill is a skill a candidate has declared on their profile.
// Identity is immutable; LastEvaluatedAt is written by the evaluation
// subsystem when an evaluator finishes, never by this pipeline.
type CandidateSkill struct {
	ID              string     `json:"id"`
	CandidateID     string     `json:"candidate_id"`
	SkillID         string     `json:"skill_id"`
	Weight          int        `json:"weight"`
	LastEvaluatedAt *time.Time `json:"last_evaluated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NeedsEvaluation reports whether the skill is stale: never evaluated, or
// last evaluated before the staleness horizon.
func (cs *CandidateSkill) NeedsEvaluation(horizon time.Time) bool {
	return cs.LastEvaluatedAt == nil || cs.LastEvaluatedAt.Before(horizon)
}
