package breach

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSanitizedHidesTypesFromNonLeads(t *testing.T) {
	s := NewSession("lobby")

	view := s.Sanitized(Viewer{ParticipantID: "guesser"})
	for _, c := range view.Board {
		if c.Type != "" {
			t.Errorf("non-lead sees type %q on unrevealed card %d", c.Type, c.ID)
		}
	}

	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), `"type"`) {
		t.Errorf("serialized non-lead view leaks a type field")
	}
}

func TestSanitizedShowsTypesToLeads(t *testing.T) {
	s := NewSession("lobby")

	view := s.Sanitized(Viewer{ParticipantID: "lead", IsLead: true})
	for _, c := range view.Board {
		if c.Type == "" {
			t.Errorf("lead missing type on card %d", c.ID)
		}
	}
}

func TestSanitizedRevealedCardsArePublic(t *testing.T) {
	s := NewSession("lobby")

	if err := s.SubmitKeyword(Keyword{Word: "HACK", PointCount: 1, Team: Team1}); err != nil {
		t.Fatal(err)
	}
	ids := unrevealedIDs(s, CardTeam1, 1)
	if _, err := s.SubmitGuess(ids); err != nil {
		t.Fatal(err)
	}

	view := s.Sanitized(Viewer{ParticipantID: "guesser"})
	for _, c := range view.Board {
		if c.ID == ids[0] {
			if !c.Revealed || c.Type != CardTeam1 {
				t.Errorf("revealed card hidden from non-lead: %+v", c)
			}
		} else if c.Type != "" {
			t.Errorf("unrevealed card %d exposes type to non-lead", c.ID)
		}
	}
}

func TestSanitizedRemainingCardsDerived(t *testing.T) {
	s := NewSession("lobby")

	view := s.Sanitized(Viewer{})
	if view.TeamData[Team1].RemainingCards != Team1CardCount {
		t.Errorf("team1 remaining = %d, want %d", view.TeamData[Team1].RemainingCards, Team1CardCount)
	}
	if view.TeamData[Team2].RemainingCards != Team2CardCount {
		t.Errorf("team2 remaining = %d, want %d", view.TeamData[Team2].RemainingCards, Team2CardCount)
	}

	if err := s.SubmitKeyword(Keyword{Word: "HACK", PointCount: 1, Team: Team1}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitGuess(unrevealedIDs(s, CardTeam1, 1)); err != nil {
		t.Fatal(err)
	}

	view = s.Sanitized(Viewer{})
	if view.TeamData[Team1].RemainingCards != Team1CardCount-1 {
		t.Errorf("team1 remaining after reveal = %d, want %d", view.TeamData[Team1].RemainingCards, Team1CardCount-1)
	}
}

func TestSanitizedPassesThroughSessionFields(t *testing.T) {
	s := NewSession("lobby")

	if err := s.SubmitKeyword(Keyword{Word: "HACK", PointCount: 2, Team: Team1}); err != nil {
		t.Fatal(err)
	}

	view := s.Sanitized(Viewer{})
	if view.LobbyID != "lobby" || view.ActiveTeam != Team1 || view.RoundNumber != 1 {
		t.Errorf("pass-through fields wrong: %+v", view)
	}
	if view.GamePhase != PhaseTeamGuessing {
		t.Errorf("game_phase = %q, want team_guessing", view.GamePhase)
	}
	if view.ActiveKeyword == nil || view.ActiveKeyword.Word != "HACK" {
		t.Errorf("active_keyword not carried: %+v", view.ActiveKeyword)
	}

	// The view's keyword is a copy, not a handle into the session.
	view.ActiveKeyword.PointCount = 99
	if s.activeKeyword.PointCount != 2 {
		t.Errorf("mutating a view reached the session")
	}
}

func TestViewerFor(t *testing.T) {
	roster := NewRoster()
	roster.Join("lead", "Lead", false)
	roster.Join("guesser", "Guesser", false)
	roster.AssignTeamLead("lead")

	if v := ViewerFor(roster, "lead"); !v.IsLead {
		t.Errorf("team lead resolved as non-lead")
	}
	if v := ViewerFor(roster, "guesser"); v.IsLead {
		t.Errorf("guesser resolved as lead")
	}
	if v := ViewerFor(roster, "stranger"); v.IsLead {
		t.Errorf("absent participant resolved as lead")
	}
}
