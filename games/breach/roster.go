package breach

import "sync"

// Participant is one player in a lobby.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
	Team        Team   `json:"team"`
	IsTeamLead  bool   `json:"is_team_lead"`
	IsHost      bool   `json:"is_host"`
}

// Roster is the set of participants in a lobby. It owns participant
// identity and team/lead/ready flags; the game engine only reads it.
// At most one participant per team holds is_team_lead at any time.
type Roster struct {
	mu           sync.RWMutex
	participants []Participant
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// Join adds a participant, auto-assigning the smaller team (team1 on a
// tie). If the id already exists, only the display name is refreshed.
func (r *Roster) Join(id, displayName string, isHost bool) Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.participants {
		if r.participants[i].ID == id {
			r.participants[i].DisplayName = displayName
			return r.participants[i]
		}
	}

	p := Participant{
		ID:          id,
		DisplayName: displayName,
		Team:        r.smallerTeamLocked(),
		IsHost:      isHost,
	}
	r.participants = append(r.participants, p)

	return p
}

func (r *Roster) smallerTeamLocked() Team {
	team1, team2 := 0, 0
	for i := range r.participants {
		switch r.participants[i].Team {
		case Team1:
			team1++
		case Team2:
			team2++
		}
	}
	if team1 <= team2 {
		return Team1
	}
	return Team2
}

// Leave removes a participant. Unknown ids are a no-op.
func (r *Roster) Leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst := r.participants[:0]
	for _, p := range r.participants {
		if p.ID == id {
			continue
		}
		dst = append(dst, p)
	}
	r.participants = dst
}

// Find returns the participant with the given id.
func (r *Roster) Find(id string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.participants {
		if r.participants[i].ID == id {
			return r.participants[i], true
		}
	}
	return Participant{}, false
}

// Participants returns a copy of the roster contents.
func (r *Roster) Participants() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Participant(nil), r.participants...)
}

// SetDisplayName renames a participant.
func (r *Roster) SetDisplayName(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.participants {
		if r.participants[i].ID == id {
			r.participants[i].DisplayName = name
			return
		}
	}
}

// ToggleReady flips a participant's ready flag.
func (r *Roster) ToggleReady(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.participants {
		if r.participants[i].ID == id {
			r.participants[i].Ready = !r.participants[i].Ready
			return
		}
	}
}

// ResetReady clears every participant's ready flag, used when the host
// ends a game and the lobby returns to its staging state.
func (r *Roster) ResetReady() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.participants {
		r.participants[i].Ready = false
	}
}

// AssignTeamLead promotes a participant to lead of their team, demoting
// whoever held the role on that team. Promotion clears the ready flag so
// the new lead re-confirms.
func (r *Roster) AssignTeamLead(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var team Team
	found := false
	for i := range r.participants {
		if r.participants[i].ID == id {
			team = r.participants[i].Team
			found = true
			break
		}
	}
	if !found {
		return
	}

	for i := range r.participants {
		if r.participants[i].Team == team && r.participants[i].IsTeamLead {
			r.participants[i].IsTeamLead = false
		}
	}

	for i := range r.participants {
		if r.participants[i].ID == id {
			r.participants[i].IsTeamLead = true
			r.participants[i].Ready = false
			return
		}
	}
}

// DemoteTeamLead strips the lead role from a participant.
func (r *Roster) DemoteTeamLead(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.participants {
		if r.participants[i].ID == id {
			r.participants[i].IsTeamLead = false
			r.participants[i].Ready = false
			return
		}
	}
}

// ChangeTeam moves a participant to the given team. A lead switching
// teams loses the role.
func (r *Roster) ChangeTeam(id string, team Team) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.participants {
		if r.participants[i].ID == id {
			if r.participants[i].IsTeamLead {
				r.participants[i].IsTeamLead = false
			}
			r.participants[i].Team = team
			r.participants[i].Ready = false
			return
		}
	}
}

// CanStart reports whether a game may begin: exactly one lead per team,
// equal team sizes, and every participant ready.
func (r *Roster) CanStart() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	leads := map[Team]int{}
	counts := map[Team]int{}

	for i := range r.participants {
		p := &r.participants[i]
		counts[p.Team]++
		if p.IsTeamLead {
			leads[p.Team]++
		}
		if !p.Ready {
			return false
		}
	}

	return leads[Team1] == 1 && leads[Team2] == 1 && counts[Team1] == counts[Team2] && counts[Team1] > 0
}
