package model

import (
	"testing"
	"time"
)

func TestInviteStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to InviteStatus
		want     bool
	}{
		{InvitePending, InviteAccepted, true},
		{InvitePending, InviteDeclined, true},
		{InviteAccepted, InviteDeclined, false},
		{InviteDeclined, InviteAccepted, false},
		{InviteAccepted, InvitePending, false},
		{InviteDeclined, InvitePending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestInviteStatusIsTerminal(t *testing.T) {
	if InvitePending.IsTerminal() {
		t.Error("PENDING should not be terminal")
	}
	if !InviteAccepted.IsTerminal() || !InviteDeclined.IsTerminal() {
		t.Error("ACCEPTED and DECLINED should be terminal")
	}
}

func TestInviteExpired(t *testing.T) {
	now := time.Now().UTC()
	inv := &Invite{Status: InvitePending, ExpiresAt: now.Add(-time.Minute)}
	if !inv.Expired(now) {
		t.Error("past-deadline pending invite should be expired")
	}

	inv.ExpiresAt = now.Add(time.Minute)
	if inv.Expired(now) {
		t.Error("invite before its deadline should not be expired")
	}

	// A decided invite never expires, regardless of the deadline.
	inv.Status = InviteDeclined
	inv.ExpiresAt = now.Add(-time.Hour)
	if inv.Expired(now) {
		t.Error("terminal invite should not report expired")
	}
}

func TestCandidateSkillNeedsEvaluation(t *testing.T) {
	horizon := time.Now().UTC().AddDate(-1, 0, 0)

	cs := &CandidateSkill{}
	if !cs.NeedsEvaluation(horizon) {
		t.Error("never-evaluated skill should need evaluation")
	}

	old := horizon.Add(-24 * time.Hour)
	cs.LastEvaluatedAt = &old
	if !cs.NeedsEvaluation(horizon) {
		t.Error("skill evaluated before the horizon should need evaluation")
	}

	recent := horizon.Add(24 * time.Hour)
	cs.LastEvaluatedAt = &recent
	if cs.NeedsEvaluation(horizon) {
		t.Error("recently evaluated skill should not need evaluation")
	}
}
