// Package breach implements the session engine for the team word-breaching
// game: two teams take turns, each team's lead issues a keyword with a point
// count, and the rest of the team tries to identify the matching cards on a
// shared board whose card types are hidden from everyone but the leads.
package breach

// Team identifies one of the two sides of a game.
type Team string

const (
	Team1 Team = "team1"
	Team2 Team = "team2"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// CardType is the hidden affiliation of a card.
type CardType string

const (
	CardTeam1   CardType = "team1_card"
	CardTeam2   CardType = "team2_card"
	CardPenalty CardType = "penalty"
	CardNeutral CardType = "neutral"
)

// CardType returns the card type owned by this team.
func (t Team) CardType() CardType {
	if t == Team1 {
		return CardTeam1
	}
	return CardTeam2
}

// Phase is the current step of a team's turn.
type Phase string

const (
	PhaseKeywordEntry  Phase = "keyword_entry"
	PhaseTeamGuessing  Phase = "team_guessing"
	PhaseRevealResults Phase = "reveal_results"
)

// Card is a single board tile. Everything but Revealed is immutable once
// the board is generated; Revealed flips false→true exactly once.
type Card struct {
	ID       int      `json:"id"`
	Word     string   `json:"word"`
	Type     CardType `json:"type"`
	Revealed bool     `json:"revealed"`
}

// Board is the ordered card layout of one game.
type Board []Card

// Keyword is the active clue: a word plus the number of cards the issuing
// team's guessers may attempt this turn.
type Keyword struct {
	Word       string `json:"word"`
	PointCount int    `json:"point_count"`
	Team       Team   `json:"team"`
}
