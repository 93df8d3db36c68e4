package breach

import "sync"

// Directory is the process-wide registry of live sessions, keyed by lobby
// id. Sessions are created lazily and live until explicitly destroyed;
// there is no time- or memory-based eviction.
type Directory struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		sessions: make(map[string]*Session),
	}
}

// StartGame returns the session for the lobby, creating it with a fresh
// board on first call. Duplicate calls return the existing session
// untouched, so a repeated start can never reset a board mid-game.
func (d *Directory) StartGame(lobbyID string) *Session {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.sessions[lobbyID]; ok {
		return s
	}

	s := NewSession(lobbyID)
	d.sessions[lobbyID] = s
	return s
}

// Get returns the live session for the lobby, if any.
func (d *Directory) Get(lobbyID string) (*Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[lobbyID]
	return s, ok
}

// Destroy removes the session. Idempotent on missing ids.
func (d *Directory) Destroy(lobbyID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.sessions, lobbyID)
}
