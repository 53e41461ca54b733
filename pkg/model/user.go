package model

import "time"

// ProfileKind identifies which role a profile grants a user.
// A single user account may hold several profiles (candidate, evaluator,
// company); notifications and digest links are scoped to one of them.
type ProfileKind string

const (
	// ProfileCandidate is a job-seeking candidate profile.
	ProfileCandidate ProfileKind = "candidate"
	// ProfileEvaluator is a skill-evaluator profile.
	ProfileEvaluator ProfileKind = "evaluator"
	// ProfileCompany is a hiring-company profile.
	ProfileCompany ProfileKind = "company"
)

// User is the account that owns profiles and receives email.
// The pipeline only reads users; account management lives elsewhere.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Language  string    `json:"language"` // BCP-47 tag, e.g. "pt-BR"
	CreatedAt time.Time `json:"created_at"`
}

// Candidate is a candidate profile. CreatedAt drives the queue builder's
// new-account cooldown; Language is carried onto evaluation requests so
// later mail can be localized without re-joining.
type Candidate struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}
