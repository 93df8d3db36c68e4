package breach

import "testing"

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestGenerateBoardComposition(t *testing.T) {
	for trial := 0; trial < 50; trial++ {
		board := GenerateBoard()

		if len(board) != BoardSize {
			t.Fatalf("board has %d cards, want %d", len(board), BoardSize)
		}

		counts := map[CardType]int{}
		words := map[string]bool{}
		ids := map[int]bool{}

		for _, c := range board {
			counts[c.Type]++
			if words[c.Word] {
				t.Errorf("word %q appears twice on one board", c.Word)
			}
			words[c.Word] = true
			if c.ID < 1 || c.ID > BoardSize {
				t.Errorf("card id %d out of range 1..%d", c.ID, BoardSize)
			}
			if ids[c.ID] {
				t.Errorf("card id %d appears twice on one board", c.ID)
			}
			ids[c.ID] = true
			if c.Revealed {
				t.Errorf("card %d starts revealed", c.ID)
			}
		}

		if counts[CardTeam1] != Team1CardCount {
			t.Errorf("got %d team1 cards, want %d", counts[CardTeam1], Team1CardCount)
		}
		if counts[CardTeam2] != Team2CardCount {
			t.Errorf("got %d team2 cards, want %d", counts[CardTeam2], Team2CardCount)
		}
		if counts[CardPenalty] != PenaltyCardCount {
			t.Errorf("got %d penalty cards, want %d", counts[CardPenalty], PenaltyCardCount)
		}
		if counts[CardNeutral] != NeutralCardCount {
			t.Errorf("got %d neutral cards, want %d", counts[CardNeutral], NeutralCardCount)
		}
	}
}
