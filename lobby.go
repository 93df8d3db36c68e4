package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/nullgrid/breach/games/breach"
)

// Lobby groups a roster under a shareable id. The roster owns participant
// identity; the game engine only ever reads it.
//
// The host is claimed by the hub goroutine and read by HTTP handlers, so
// it lives behind its own lock.
type Lobby struct {
	ID     string
	Name   string
	Roster *breach.Roster

	mu     sync.Mutex
	hostID string
}

// Host returns the current host id, or "" if nobody has claimed it yet.
func (l *Lobby) Host() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.hostID
}

// ClaimHost makes userID the host if the seat is empty and reports whether
// userID holds it afterwards.
func (l *Lobby) ClaimHost(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hostID == "" {
		l.hostID = userID
	}

	return l.hostID == userID
}

// LobbyStore is the in-memory registry of lobbies.
type LobbyStore struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby
}

func newLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[string]*Lobby),
	}
}

func (s *LobbyStore) Get(id string) (*Lobby, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lobby, ok := s.lobbies[id]
	return lobby, ok
}

// Create registers a new lobby under a fresh uuid.
func (s *LobbyStore) Create(name, hostID string) *Lobby {
	lobby := &Lobby{
		ID:     uuid.NewString(),
		Name:   name,
		hostID: hostID,
		Roster: breach.NewRoster(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lobby.ID] = lobby

	return lobby
}

func (s *LobbyStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lobbies, id)
}

type createLobbyRequest struct {
	HostID          string `json:"host_id"`
	HostDisplayName string `json:"host_display_name"`
	LobbyName       string `json:"lobby_name"`
}

type createLobbyResponse struct {
	LobbyID   string `json:"lobby_id"`
	LobbyURL  string `json:"lobby_url"`
	LobbyName string `json:"lobby_name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// createLobbyHandler handles POST {prefix}/api/lobby.
func createLobbyHandler(cfg *Config, path string, store *LobbyStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req createLobbyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if req.HostID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "host_id is required"})
			return
		}
		if req.HostDisplayName == "" {
			req.HostDisplayName = "Host"
		}
		if req.LobbyName == "" {
			req.LobbyName = "Default Lobby"
		}

		lobby := store.Create(req.LobbyName, req.HostID)
		lobby.Roster.Join(req.HostID, req.HostDisplayName, true)

		logf(cfg, "GAMES: Created lobby %q (%s)", lobby.Name, lobby.ID)

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		writeJSON(w, http.StatusCreated, createLobbyResponse{
			LobbyID:   lobby.ID,
			LobbyURL:  scheme + "://" + r.Host + cfg.prefix + path + "/" + lobby.ID,
			LobbyName: lobby.Name,
		})
	}
}

type lobbyResponse struct {
	ID           string               `json:"id"`
	LobbyName    string               `json:"lobby_name"`
	Host         string               `json:"host"`
	Participants []breach.Participant `json:"participants"`
}

// getLobbyHandler handles GET {prefix}/api/lobby/:lobbyid.
func getLobbyHandler(store *LobbyStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		lobby, ok := store.Get(ps.ByName("lobbyid"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Lobby not found"})
			return
		}

		writeJSON(w, http.StatusOK, lobbyResponse{
			ID:           lobby.ID,
			LobbyName:    lobby.Name,
			Host:         lobby.Host(),
			Participants: lobby.Roster.Participants(),
		})
	}
}

// getGameHandler handles GET {prefix}/api/game/:lobbyid?user_id=X: the
// sanitized snapshot a client loads when joining or reconnecting.
func getGameHandler(store *LobbyStore, directory *breach.Directory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id query parameter is required"})
			return
		}

		lobby, ok := store.Get(ps.ByName("lobbyid"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Lobby not found"})
			return
		}

		session, ok := directory.Get(lobby.ID)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Game not found"})
			return
		}

		writeJSON(w, http.StatusOK, session.Sanitized(breach.ViewerFor(lobby.Roster, userID)))
	}
}
