package breach

import (
	"errors"
	"sync"
	"time"
)

// Expected failures reported by session operations. Invalid-state and
// invalid-input calls are rejected before any mutation.
var (
	ErrGameOver       = errors.New("game is already over")
	ErrWrongPhase     = errors.New("operation not valid in current phase")
	ErrNoKeyword      = errors.New("no active keyword")
	ErrBadPointCount  = errors.New("point count must be positive")
	ErrNotEnoughCards = errors.New("point count exceeds team's remaining cards")
	ErrNoValidCards   = errors.New("no unrevealed cards in guess")
	ErrTooManyCards   = errors.New("more cards than the keyword allows")
	ErrUnknownCard    = errors.New("card not on the board or already revealed")
)

// Session is the authoritative game state for one lobby. All operations on
// a session are linearized by its mutex; callers receive copies or
// sanitized views, never a second writable handle to the board.
type Session struct {
	mu sync.Mutex

	lobbyID       string
	activeTeam    Team
	roundNumber   int
	phase         Phase
	gameStartedAt int64
	activeKeyword *Keyword
	board         Board
	gameOver      bool
	winner        Team

	// selections tracks live card picks per user during team_guessing.
	selections map[string][]int
}

// NewSession creates a session in its initial state: team1 to act,
// round 1, keyword entry, a freshly generated board.
func NewSession(lobbyID string) *Session {
	return &Session{
		lobbyID:       lobbyID,
		activeTeam:    Team1,
		roundNumber:   1,
		phase:         PhaseKeywordEntry,
		gameStartedAt: time.Now().Unix(),
		board:         GenerateBoard(),
		selections:    make(map[string][]int),
	}
}

// LobbyID returns the lobby this session belongs to.
func (s *Session) LobbyID() string {
	return s.lobbyID
}

// ActiveTeam returns the team currently taking its turn.
func (s *Session) ActiveTeam() Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTeam
}

// GameOver reports whether a team has revealed all of its cards.
func (s *Session) GameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// remainingLocked counts unrevealed cards of the given type.
func (s *Session) remainingLocked(ct CardType) int {
	n := 0
	for i := range s.board {
		if !s.board[i].Revealed && s.board[i].Type == ct {
			n++
		}
	}
	return n
}

// SubmitKeyword sets the active keyword and moves the session into the
// guessing phase. The point count is capped by the issuing team's
// remaining unrevealed cards: the game is won by revealing all of your
// own cards.
func (s *Session) SubmitKeyword(k Keyword) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameOver
	}
	if s.phase != PhaseKeywordEntry {
		return ErrWrongPhase
	}
	if k.PointCount <= 0 {
		return ErrBadPointCount
	}
	if k.PointCount > s.remainingLocked(k.Team.CardType()) {
		return ErrNotEnoughCards
	}

	keyword := k
	s.activeKeyword = &keyword
	s.phase = PhaseTeamGuessing

	return nil
}

// GuessResult is the outcome of one resolved guess, suitable for broadcast.
type GuessResult struct {
	CorrectGuesses   int    `json:"correct_guesses"`
	IncorrectGuesses int    `json:"incorrect_guesses"`
	PenaltyTriggered bool   `json:"penalty_triggered"`
	Cards            []Card `json:"cards"`
}

// SubmitGuess resolves the given card ids against the board. Ids that are
// unknown or already revealed are dropped; the remaining set must hold
// between 1 and point_count cards (guessers may stop early). Every resolved
// card is revealed and tallied, penalty included — a penalty card does not
// short-circuit the rest of the guess. Validation happens entirely before
// any card is revealed.
func (s *Session) SubmitGuess(cardIDs []int) (*GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return nil, ErrGameOver
	}
	if s.phase != PhaseTeamGuessing {
		return nil, ErrWrongPhase
	}
	if s.activeKeyword == nil {
		return nil, ErrNoKeyword
	}

	guessed := make([]int, 0, len(cardIDs))
	for _, id := range cardIDs {
		for i := range s.board {
			if s.board[i].ID == id && !s.board[i].Revealed {
				guessed = append(guessed, i)
				break
			}
		}
	}

	if len(guessed) == 0 {
		return nil, ErrNoValidCards
	}
	if len(guessed) > s.activeKeyword.PointCount {
		return nil, ErrTooManyCards
	}

	result := &GuessResult{
		Cards: make([]Card, 0, len(guessed)),
	}

	ownType := s.activeTeam.CardType()
	for _, i := range guessed {
		s.board[i].Revealed = true
		result.Cards = append(result.Cards, s.board[i])

		switch s.board[i].Type {
		case ownType:
			result.CorrectGuesses++
		case CardPenalty:
			result.PenaltyTriggered = true
		default:
			result.IncorrectGuesses++
		}
	}

	if s.remainingLocked(ownType) == 0 {
		s.gameOver = true
		s.winner = s.activeTeam
	}

	s.phase = PhaseRevealResults

	return result, nil
}

// EndTurn hands play to the other team: clears the keyword and any live
// card selections, returns to keyword entry, and bumps the round number
// when play comes back around to team1.
func (s *Session) EndTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameOver
	}

	s.activeTeam = s.activeTeam.Opponent()
	s.activeKeyword = nil
	s.phase = PhaseKeywordEntry
	s.selections = make(map[string][]int)

	if s.activeTeam == Team1 {
		s.roundNumber++
	}

	return nil
}
