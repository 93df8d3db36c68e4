package breach

import "testing"

func TestStartGameIsIdempotent(t *testing.T) {
	d := NewDirectory()

	first := d.StartGame("lobby")
	second := d.StartGame("lobby")

	if first != second {
		t.Fatalf("duplicate start created a second session")
	}

	// Same board, not a regenerated one.
	for i := range first.board {
		if first.board[i] != second.board[i] {
			t.Errorf("board changed between start calls at index %d", i)
		}
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	d := NewDirectory()

	a := d.StartGame("a")
	b := d.StartGame("b")

	if err := a.SubmitKeyword(Keyword{Word: "HACK", PointCount: 1, Team: Team1}); err != nil {
		t.Fatal(err)
	}

	if b.ActiveTeam() != Team1 {
		t.Errorf("session b affected by session a")
	}
	view := b.Sanitized(Viewer{})
	if view.GamePhase != PhaseKeywordEntry {
		t.Errorf("session b phase = %q, want keyword_entry", view.GamePhase)
	}
}

func TestDestroy(t *testing.T) {
	d := NewDirectory()
	d.StartGame("lobby")

	d.Destroy("lobby")
	d.Destroy("lobby") // idempotent

	if _, ok := d.Get("lobby"); ok {
		t.Errorf("destroyed session still present")
	}

	// A fresh start after destroy builds a new session.
	s := d.StartGame("lobby")
	if s.GameOver() {
		t.Errorf("recreated session not in initial state")
	}
}
