package breach

// Viewer is the capability a sanitized view is produced for. Only the lead
// flag widens what a viewer may see; participant identity is kept for the
// caller's benefit.
type Viewer struct {
	ParticipantID string
	IsLead        bool
}

// ViewerFor resolves a user id against the roster. An absent participant
// is a non-lead viewer.
func ViewerFor(roster *Roster, userID string) Viewer {
	v := Viewer{ParticipantID: userID}
	if p, ok := roster.Find(userID); ok {
		v.IsLead = p.IsTeamLead
	}
	return v
}

// ViewCard is a card as one viewer is allowed to see it. Type is empty,
// and omitted from JSON, when the card is unrevealed and the viewer is not
// a team lead. Revealed cards always carry their type: it is public the
// moment a card is turned over.
type ViewCard struct {
	ID       int      `json:"id"`
	Word     string   `json:"word"`
	Type     CardType `json:"type,omitempty"`
	Revealed bool     `json:"revealed"`
}

// TeamData carries per-team derived state.
type TeamData struct {
	RemainingCards int `json:"remaining_cards"`
}

// View is a per-viewer snapshot of a session, safe to broadcast to that
// viewer. Everything except the board and team counts passes through from
// the session unchanged.
type View struct {
	LobbyID       string            `json:"lobby_id"`
	ActiveTeam    Team              `json:"active_team"`
	RoundNumber   int               `json:"round_number"`
	GamePhase     Phase             `json:"game_phase"`
	TeamData      map[Team]TeamData `json:"team_data"`
	GameStartedAt int64             `json:"game_started_at"`
	ActiveKeyword *Keyword          `json:"active_keyword"`
	GameOver      bool              `json:"game_over"`
	Winner        Team              `json:"winner,omitempty"`
	Board         []ViewCard        `json:"board"`
	SelectedCards map[string][]int  `json:"selected_cards"`
}

// Sanitized projects the session for one viewer. Remaining-card counts are
// derived from the unrevealed cards on every call so they always reflect
// the current reveal state. This projection is the only place role-based
// hiding happens; the session itself must never be sent to a client.
func (s *Session) Sanitized(v Viewer) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	board := make([]ViewCard, 0, len(s.board))
	team1Remaining := 0
	team2Remaining := 0

	for i := range s.board {
		card := s.board[i]

		vc := ViewCard{
			ID:       card.ID,
			Word:     card.Word,
			Type:     card.Type,
			Revealed: card.Revealed,
		}

		if !card.Revealed {
			switch card.Type {
			case CardTeam1:
				team1Remaining++
			case CardTeam2:
				team2Remaining++
			}

			if !v.IsLead {
				vc.Type = ""
			}
		}

		board = append(board, vc)
	}

	var keyword *Keyword
	if s.activeKeyword != nil {
		k := *s.activeKeyword
		keyword = &k
	}

	selected := make(map[string][]int, len(s.selections))
	for id, picks := range s.selections {
		selected[id] = append([]int(nil), picks...)
	}

	return View{
		LobbyID:     s.lobbyID,
		ActiveTeam:  s.activeTeam,
		RoundNumber: s.roundNumber,
		GamePhase:   s.phase,
		TeamData: map[Team]TeamData{
			Team1: {RemainingCards: team1Remaining},
			Team2: {RemainingCards: team2Remaining},
		},
		GameStartedAt: s.gameStartedAt,
		ActiveKeyword: keyword,
		GameOver:      s.gameOver,
		Winner:        s.winner,
		Board:         board,
		SelectedCards: selected,
	}
}
