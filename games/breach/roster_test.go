package breach

import "testing"

func TestJoinAutoAssignsSmallerTeam(t *testing.T) {
	r := NewRoster()

	a := r.Join("a", "A", true)
	b := r.Join("b", "B", false)
	c := r.Join("c", "C", false)

	if a.Team != Team1 {
		t.Errorf("first join assigned to %q, want team1", a.Team)
	}
	if b.Team != Team2 {
		t.Errorf("second join assigned to %q, want team2", b.Team)
	}
	if c.Team != Team1 {
		t.Errorf("tie should go to team1, got %q", c.Team)
	}
	if !a.IsHost || b.IsHost {
		t.Errorf("host flag misapplied: a=%v b=%v", a.IsHost, b.IsHost)
	}
}

func TestJoinExistingRefreshesName(t *testing.T) {
	r := NewRoster()
	r.Join("a", "Old", false)
	r.Join("b", "B", false)

	p := r.Join("a", "New", false)
	if p.DisplayName != "New" {
		t.Errorf("display name = %q, want New", p.DisplayName)
	}
	if p.Team != Team1 {
		t.Errorf("rejoin moved participant to %q", p.Team)
	}
	if len(r.Participants()) != 2 {
		t.Errorf("rejoin duplicated participant: %d entries", len(r.Participants()))
	}
}

func TestAssignTeamLeadReplacesPriorLead(t *testing.T) {
	r := NewRoster()
	r.Join("a", "A", false) // team1
	r.Join("b", "B", false) // team2
	r.Join("c", "C", false) // team1

	r.AssignTeamLead("a")
	r.AssignTeamLead("b")
	r.AssignTeamLead("c")

	a, _ := r.Find("a")
	b, _ := r.Find("b")
	c, _ := r.Find("c")

	if a.IsTeamLead {
		t.Errorf("prior team1 lead not demoted")
	}
	if !c.IsTeamLead {
		t.Errorf("new team1 lead not promoted")
	}
	if !b.IsTeamLead {
		t.Errorf("team2 lead lost role when team1 lead changed")
	}
}

func TestChangeTeamDemotesLead(t *testing.T) {
	r := NewRoster()
	r.Join("a", "A", false)
	r.AssignTeamLead("a")
	r.ToggleReady("a")

	r.ChangeTeam("a", Team2)

	a, _ := r.Find("a")
	if a.Team != Team2 {
		t.Errorf("team = %q, want team2", a.Team)
	}
	if a.IsTeamLead {
		t.Errorf("lead role survived team change")
	}
	if a.Ready {
		t.Errorf("ready flag survived team change")
	}
}

func TestCanStart(t *testing.T) {
	r := NewRoster()
	r.Join("a", "A", true)  // team1
	r.Join("b", "B", false) // team2

	if r.CanStart() {
		t.Errorf("start allowed with no leads and nobody ready")
	}

	r.AssignTeamLead("a")
	r.AssignTeamLead("b")
	r.ToggleReady("a")
	r.ToggleReady("b")

	if !r.CanStart() {
		t.Errorf("start refused with one ready lead per team and equal sides")
	}

	// A third player unbalances the teams and is not ready.
	r.Join("c", "C", false)
	if r.CanStart() {
		t.Errorf("start allowed with unequal teams")
	}

	r.Leave("c")
	if !r.CanStart() {
		t.Errorf("start refused after leaver removed")
	}
}

func TestResetReady(t *testing.T) {
	r := NewRoster()
	r.Join("a", "A", false)
	r.Join("b", "B", false)
	r.ToggleReady("a")
	r.ToggleReady("b")

	r.ResetReady()

	for _, p := range r.Participants() {
		if p.Ready {
			t.Errorf("participant %s still ready after reset", p.ID)
		}
	}
}

func TestLeaveAndFind(t *testing.T) {
	r := NewRoster()
	r.Join("a", "A", false)
	r.Leave("a")
	r.Leave("a") // idempotent

	if _, ok := r.Find("a"); ok {
		t.Errorf("removed participant still found")
	}
	if len(r.Participants()) != 0 {
		t.Errorf("roster not empty after leave")
	}
}
