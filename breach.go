// Breach game transport.
//
// Two teams face a shared 16-card board. Each turn, the active team's lead
// submits a keyword with a point count, and the rest of the team guesses
// which cards match. Card types stay hidden from everyone but the leads
// until revealed. Revealing all of your own team's cards wins; revealing
// the penalty card helps nobody.
//
// Wiring:
// - Lobby REST under $prefix/api, websockets per lobby at $path/:lobbyid/ws
// - One hub goroutine per lobby; inbound messages are handled one at a time
// - Game state updates are personalized per participant, because leads see
//   more of the board than guessers
// - After a guess resolves, the hub broadcasts the reveal, pauses for
//   cfg.revealDelay, then ends the turn and broadcasts again
// - Players identified by cookie; the first to join a lobby without a host
//   becomes its host

package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/nullgrid/breach/games/breach"
)

// ClientMessage is the single tagged envelope for everything a client can
// send. Exactly one operation per message, selected by Type.
type ClientMessage struct {
	Type string `json:"type"`

	DisplayName string `json:"display_name,omitempty"` // lobby:join / lobby:update_display_name
	TargetID    string `json:"target_id,omitempty"`    // lobby:assign_team_lead / lobby:demote_team_lead
	NewTeam     string `json:"new_team,omitempty"`     // lobby:change_team

	Keyword  *KeywordPayload `json:"keyword,omitempty"`  // game:submit_keyword
	CardIDs  []int           `json:"card_ids,omitempty"` // game:submit_guess
	CardID   int             `json:"card_id,omitempty"`  // game:select_card
	Selected bool            `json:"selected,omitempty"` // game:select_card
}

type KeywordPayload struct {
	Word       string `json:"word"`
	PointCount int    `json:"point_count"`
}

// LobbyUpdateMessage is broadcast to everyone in the lobby; it carries no
// hidden information.
type LobbyUpdateMessage struct {
	Type         string               `json:"type"` // "lobby:update"
	ID           string               `json:"id"`
	LobbyName    string               `json:"lobby_name"`
	Host         string               `json:"host"`
	Participants []breach.Participant `json:"participants"`
}

// GameUpdateMessage carries a per-viewer sanitized snapshot.
type GameUpdateMessage struct {
	Type  string      `json:"type"` // "game:update"
	State breach.View `json:"state"`
}

// GuessResultMessage announces the outcome of a resolved guess.
type GuessResultMessage struct {
	Type   string             `json:"type"` // "game:guess_result"
	Result breach.GuessResult `json:"result"`
}

// ErrorMessage is sent to a single client whose request was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "lobby:error" or "game:error"
	Message string `json:"message"`
}

// SimpleMessage is for bare notifications ("lobby:start_game", "lobby:end_game").
type SimpleMessage struct {
	Type string `json:"type"`
}

type Client struct {
	conn   *websocket.Conn
	send   chan any
	userID string
}

type request struct {
	client *Client
	msg    ClientMessage
}

// Hub owns the websocket clients of one lobby and serializes every inbound
// operation through its run loop.
type Hub struct {
	lobby     *Lobby
	directory *breach.Directory
	manager   *GameManager

	clients  map[*Client]bool
	register chan *Client
	unreg    chan *Client
	requests chan request

	// refs counts attached connections; guarded by manager.mu. The run
	// loop stops once it drops to zero.
	refs int

	mu sync.RWMutex
}

func newHub(lobby *Lobby, directory *breach.Directory, manager *GameManager) *Hub {
	return &Hub{
		lobby:     lobby,
		directory: directory,
		manager:   manager,
		clients:   make(map[*Client]bool),
		register:  make(chan *Client),
		unreg:     make(chan *Client),
		requests:  make(chan request),
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

			h.sendLobbyUpdate(c)

		case c := <-h.unreg:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

			if h.manager.release(h) {
				return
			}

		case req := <-h.requests:
			h.handle(cfg, req)
		}
	}
}

func (h *Hub) handle(cfg *Config, req request) {
	c := req.client
	msg := req.msg

	switch msg.Type {
	case "lobby:join":
		if msg.DisplayName == "" {
			h.sendError(c, "lobby:error", "display_name required")
			return
		}
		isHost := h.lobby.ClaimHost(c.userID)
		h.lobby.Roster.Join(c.userID, msg.DisplayName, isHost)
		logf(cfg, "GAMES: Player %q joined lobby %s", msg.DisplayName, h.lobby.ID)
		h.broadcastLobbyUpdate()

	case "lobby:leave":
		h.lobby.Roster.Leave(c.userID)
		h.broadcastLobbyUpdate()

	case "lobby:update_display_name":
		h.lobby.Roster.SetDisplayName(c.userID, msg.DisplayName)
		h.broadcastLobbyUpdate()

	case "lobby:toggle_ready":
		h.lobby.Roster.ToggleReady(c.userID)
		h.broadcastLobbyUpdate()

	case "lobby:assign_team_lead":
		h.lobby.Roster.AssignTeamLead(h.targetOrSelf(msg, c))
		h.broadcastLobbyUpdate()

	case "lobby:demote_team_lead":
		h.lobby.Roster.DemoteTeamLead(h.targetOrSelf(msg, c))
		h.broadcastLobbyUpdate()

	case "lobby:change_team":
		team := breach.Team(msg.NewTeam)
		if team != breach.Team1 && team != breach.Team2 {
			h.sendError(c, "lobby:error", "Unknown team")
			return
		}
		h.lobby.Roster.ChangeTeam(c.userID, team)
		h.broadcastLobbyUpdate()

	case "lobby:start_game":
		if !h.lobby.Roster.CanStart() {
			h.sendError(c, "lobby:error", "Cannot start game")
			return
		}
		h.broadcastSimple("lobby:start_game")

	case "lobby:force_start":
		if !h.isHost(c.userID) {
			h.sendError(c, "lobby:error", "Only the host can force start the game")
			return
		}
		h.broadcastSimple("lobby:start_game")

	case "lobby:end_game":
		if !h.isHost(c.userID) {
			h.sendError(c, "lobby:error", "Only the host can end the game")
			return
		}
		h.directory.Destroy(h.lobby.ID)
		h.lobby.Roster.ResetReady()
		logf(cfg, "GAMES: Host ended game in lobby %s", h.lobby.ID)
		h.broadcastSimple("lobby:end_game")
		h.broadcastLobbyUpdate()

	case "join_game":
		session := h.directory.StartGame(h.lobby.ID)
		h.sendGameUpdate(c, session)

	case "game:submit_keyword":
		h.handleKeyword(cfg, c, msg)

	case "game:submit_guess":
		h.handleGuess(cfg, c, msg)

	case "game:select_card":
		h.handleSelect(c, msg)

	case "end_turn":
		session, ok := h.directory.Get(h.lobby.ID)
		if !ok {
			h.sendError(c, "game:error", "Game not found")
			return
		}
		if err := session.EndTurn(); err != nil {
			h.sendError(c, "game:error", err.Error())
			return
		}
		h.broadcastGameUpdate(session)
	}
}

func (h *Hub) targetOrSelf(msg ClientMessage, c *Client) string {
	if msg.TargetID != "" {
		return msg.TargetID
	}
	return c.userID
}

func (h *Hub) isHost(userID string) bool {
	p, ok := h.lobby.Roster.Find(userID)
	return ok && p.IsHost
}

// handleKeyword enforces actor eligibility (active team's lead) before the
// engine checks phase and counts.
func (h *Hub) handleKeyword(cfg *Config, c *Client, msg ClientMessage) {
	session, ok := h.directory.Get(h.lobby.ID)
	if !ok {
		h.sendError(c, "game:error", "Game not found")
		return
	}
	if msg.Keyword == nil || msg.Keyword.Word == "" {
		h.sendError(c, "game:error", "Invalid keyword submission")
		return
	}

	participant, ok := h.lobby.Roster.Find(c.userID)
	if !ok || !participant.IsTeamLead {
		h.sendError(c, "game:error", "Only team leads can submit keywords")
		return
	}
	if participant.Team != session.ActiveTeam() {
		h.sendError(c, "game:error", "It's not your team's turn")
		return
	}

	err := session.SubmitKeyword(breach.Keyword{
		Word:       msg.Keyword.Word,
		PointCount: msg.Keyword.PointCount,
		Team:       participant.Team,
	})
	if err != nil {
		h.sendError(c, "game:error", err.Error())
		return
	}

	logf(cfg, "GAMES: %q submitted keyword %q (%d) in %s",
		participant.DisplayName, msg.Keyword.Word, msg.Keyword.PointCount, h.lobby.ID)

	h.broadcastGameUpdate(session)
}

// handleGuess enforces actor eligibility (active-team guesser, not a lead),
// resolves the guess, broadcasts the reveal, and schedules the automatic
// turn end after the reveal pause.
func (h *Hub) handleGuess(cfg *Config, c *Client, msg ClientMessage) {
	session, ok := h.directory.Get(h.lobby.ID)
	if !ok {
		h.sendError(c, "game:error", "Game not found")
		return
	}

	participant, ok := h.lobby.Roster.Find(c.userID)
	if !ok {
		h.sendError(c, "game:error", "User not found in lobby")
		return
	}
	if participant.Team != session.ActiveTeam() || participant.IsTeamLead {
		h.sendError(c, "game:error", "Only team members on the active team can submit guesses")
		return
	}

	result, err := session.SubmitGuess(msg.CardIDs)
	if err != nil {
		h.sendError(c, "game:error", err.Error())
		return
	}

	logf(cfg, "GAMES: %q guessed %v in %s (correct=%d incorrect=%d penalty=%v)",
		participant.DisplayName, msg.CardIDs, h.lobby.ID,
		result.CorrectGuesses, result.IncorrectGuesses, result.PenaltyTriggered)

	h.broadcast(GuessResultMessage{Type: "game:guess_result", Result: *result})
	h.broadcastGameUpdate(session)

	if session.GameOver() {
		return
	}

	// Give players a moment to see the reveal, then flip the turn. The
	// pacing belongs to the transport; the engine knows nothing about it.
	go func() {
		time.Sleep(cfg.revealDelay)

		if session.GameOver() {
			return
		}
		if err := session.EndTurn(); err != nil {
			return
		}
		h.broadcastGameUpdate(session)
	}()
}

func (h *Hub) handleSelect(c *Client, msg ClientMessage) {
	session, ok := h.directory.Get(h.lobby.ID)
	if !ok {
		h.sendError(c, "game:error", "Game not found")
		return
	}

	participant, ok := h.lobby.Roster.Find(c.userID)
	if !ok || participant.Team != session.ActiveTeam() || participant.IsTeamLead {
		h.sendError(c, "game:error", "Only team members on the active team can select cards")
		return
	}

	if err := session.Select(c.userID, msg.CardID, msg.Selected); err != nil {
		h.sendError(c, "game:error", err.Error())
		return
	}

	h.broadcastGameUpdate(session)
}

func (h *Hub) sendError(c *Client, kind, text string) {
	select {
	case c.send <- ErrorMessage{Type: kind, Message: text}:
	default:
	}
}

func (h *Hub) lobbyUpdate() LobbyUpdateMessage {
	return LobbyUpdateMessage{
		Type:         "lobby:update",
		ID:           h.lobby.ID,
		LobbyName:    h.lobby.Name,
		Host:         h.lobby.Host(),
		Participants: h.lobby.Roster.Participants(),
	}
}

func (h *Hub) sendLobbyUpdate(c *Client) {
	select {
	case c.send <- h.lobbyUpdate():
	default:
	}
}

func (h *Hub) broadcastLobbyUpdate() {
	h.broadcast(h.lobbyUpdate())
}

func (h *Hub) broadcastSimple(kind string) {
	h.broadcast(SimpleMessage{Type: kind})
}

// broadcast sends one shared payload to every client, dropping clients
// whose send buffer is full.
func (h *Hub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) sendGameUpdate(c *Client, session *breach.Session) {
	view := session.Sanitized(breach.ViewerFor(h.lobby.Roster, c.userID))
	select {
	case c.send <- GameUpdateMessage{Type: "game:update", State: view}:
	default:
	}
}

// broadcastGameUpdate sends one personalized payload per client: leads and
// guessers see different boards, so there is no shared game snapshot.
func (h *Hub) broadcastGameUpdate(session *breach.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		view := session.Sanitized(breach.ViewerFor(h.lobby.Roster, client.userID))

		select {
		case client.send <- GameUpdateMessage{Type: "game:update", State: view}:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "breach_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a hub per lobby id, so each $path/$lobbyid is its own
// isolated session, plus the session directory shared with the REST layer.
type GameManager struct {
	mu        sync.Mutex
	hubs      map[string]*Hub
	store     *LobbyStore
	directory *breach.Directory
}

func newGameManager(store *LobbyStore, directory *breach.Directory) *GameManager {
	return &GameManager{
		hubs:      make(map[string]*Hub),
		store:     store,
		directory: directory,
	}
}

// attach returns the hub for the lobby, creating it on first use, and
// counts the caller as an attached connection. Every attach must be paired
// with exactly one send on hub.unreg; the hub cannot be torn down while
// the attachment is outstanding.
func (gm *GameManager) attach(cfg *Config, lobby *Lobby) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	hub, ok := gm.hubs[lobby.ID]
	if !ok {
		hub = newHub(lobby, gm.directory, gm)
		gm.hubs[lobby.ID] = hub
		go hub.run(cfg)
	}
	hub.refs++

	return hub
}

// release drops one attachment. When the last one goes, the hub is removed
// from the manager and its run loop stops; the next connection to the
// lobby gets a fresh hub.
func (gm *GameManager) release(h *Hub) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	h.refs--
	if h.refs > 0 {
		return false
	}
	delete(gm.hubs, h.lobby.ID)

	return true
}

// WebSocket handler that picks the hub based on :lobbyid.
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		lobbyID := ps.ByName("lobbyid")
		if lobbyID == "" {
			http.Error(w, "missing lobby id", http.StatusBadRequest)
			return
		}

		lobby, ok := gm.store.Get(lobbyID)
		if !ok {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		hub := gm.attach(cfg, lobby)

		client := &Client{
			conn:   conn,
			send:   make(chan any, 8),
			userID: playerID,
		}

		hub.register <- client

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Type == "" {
			continue
		}

		h.requests <- request{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current lobby URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lobbyID := ps.ByName("lobbyid")
	if lobbyID == "" {
		http.Error(w, "missing lobby id", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:lobbyid/qr; strip trailing "/qr" to get the lobby URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func getClientHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		data, err := assets.ReadFile("assets/breach/index.html")
		if err != nil {
			return
		}

		_, _ = w.Write(data)
	}
}

// redirectNewGame handles GET /path by creating a fresh lobby and
// redirecting to /path/:lobbyid. The first player to join becomes host.
func redirectNewGame(cfg *Config, path string, store *LobbyStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		lobby := store.Create("Default Lobby", "")
		logf(cfg, "GAMES: Created lobby %s%s/%s", cfg.prefix, path, lobby.ID)
		http.Redirect(w, r, cfg.prefix+path+"/"+lobby.ID, http.StatusTemporaryRedirect)
	}
}

// registerBreachGame sets up routes so that:
//   - $path                      → redirects to a fresh lobby
//   - $path/:lobbyid             → HTML client
//   - $path/:lobbyid/ws          → WebSocket for that lobby
//   - $path/:lobbyid/qr          → PNG QR code for that lobby URL
//   - $prefix/api/lobby[...]     → lobby REST
//   - $prefix/api/game/:lobbyid  → sanitized snapshot for reconnects
func registerBreachGame(cfg *Config, path string, mux *httprouter.Router) {
	store := newLobbyStore()
	directory := breach.NewDirectory()
	gm := newGameManager(store, directory)

	mux.POST(cfg.prefix+"/api/lobby", createLobbyHandler(cfg, path, store))
	mux.GET(cfg.prefix+"/api/lobby/:lobbyid", getLobbyHandler(store))
	mux.GET(cfg.prefix+"/api/game/:lobbyid", getGameHandler(store, directory))

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, store))

	mux.GET(cfg.prefix+path+"/:lobbyid", getClientHandler(cfg))

	mux.GET(cfg.prefix+path+"/:lobbyid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:lobbyid/qr", qrHandler)
}
