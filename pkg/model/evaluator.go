package model

import "time"

// Evaluator is an evaluator profile. An evaluator is only matchable when
// Active, AcceptsAllSkills and ReleasedToEvaluate all hold; Reputation is
// a monotonic point score used as the ranking tie-break.
type Evaluator struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Active             bool      `json:"active"`
	AcceptsAllSkills   bool      `json:"accepts_all_skills"`
	ReleasedToEvaluate bool      `json:"released_to_evaluate"`
	Language           string    `json:"language"`
	Reputation         int       `json:"reputation"`
	CreatedAt          time.Time `json:"created_at"`
}

// EvaluatorSkill is a static qualification: the evaluator is able to
// evaluate the given skill.
type EvaluatorSkill struct {
	EvaluatorID string `json:"evaluator_id"`
	SkillID     string `json:"skill_id"`
}

// Candidacy is an evaluator considered for one request, annotated with
// the evaluator's current open-invite count. The dispatcher ranks
// candidacies by load first and reputation second.
type Candidacy struct {
	Evaluator
	OpenInvites int `json:"open_invites"`
}
