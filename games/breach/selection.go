package breach

// Select records or clears a live card pick for one user during the
// guessing phase, so teammates can see what each other is hovering before
// the guess is committed. Only unrevealed board cards can be picked;
// clearing a pick never fails. Selections carry no hidden information and
// are cleared when the turn ends.
func (s *Session) Select(userID string, cardID int, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return ErrGameOver
	}
	if s.phase != PhaseTeamGuessing {
		return ErrWrongPhase
	}

	picks := s.selections[userID]

	if selected {
		onBoard := false
		for i := range s.board {
			if s.board[i].ID == cardID && !s.board[i].Revealed {
				onBoard = true
				break
			}
		}
		if !onBoard {
			return ErrUnknownCard
		}

		for _, id := range picks {
			if id == cardID {
				return nil
			}
		}
		s.selections[userID] = append(picks, cardID)
		return nil
	}

	dst := picks[:0]
	for _, id := range picks {
		if id == cardID {
			continue
		}
		dst = append(dst, id)
	}
	s.selections[userID] = dst

	return nil
}
