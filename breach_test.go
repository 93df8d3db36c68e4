package main

import (
	"testing"
	"time"

	"github.com/nullgrid/breach/games/breach"
)

func newTestManager() (*GameManager, *LobbyStore) {
	store := newLobbyStore()
	return newGameManager(store, breach.NewDirectory()), store
}

func attachTestClient(t *testing.T, gm *GameManager, cfg *Config, lobby *Lobby, userID string) (*Hub, *Client) {
	t.Helper()

	hub := gm.attach(cfg, lobby)
	c := &Client{send: make(chan any, 8), userID: userID}
	hub.register <- c
	return hub, c
}

func hubCount(gm *GameManager) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return len(gm.hubs)
}

func waitForHubCount(t *testing.T, gm *GameManager, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hubCount(gm) != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub count = %d, want %d", hubCount(gm), want)
		}
		time.Sleep(time.Millisecond)
	}
}

// TestHubJoinAssignsHostSafely has the hub goroutine claim the host seat
// for a joining player while another goroutine hammers reads of the same
// seat; run with -race.
func TestHubJoinAssignsHostSafely(t *testing.T) {
	gm, store := newTestManager()
	cfg := &Config{}
	lobby := store.Create("Default Lobby", "")

	hub, c := attachTestClient(t, gm, cfg, lobby, "u1")
	<-c.send // snapshot pushed on register

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = lobby.Host()
		}
	}()

	hub.requests <- request{client: c, msg: ClientMessage{Type: "lobby:join", DisplayName: "Ada"}}
	<-c.send // broadcast after the join is handled
	<-done

	if got := lobby.Host(); got != "u1" {
		t.Errorf("host = %q, want %q", got, "u1")
	}
	if p, ok := lobby.Roster.Find("u1"); !ok || !p.IsHost {
		t.Errorf("joining player should hold the host seat: ok=%v participant=%+v", ok, p)
	}

	hub.unreg <- c
	waitForHubCount(t, gm, 0)
}

// TestGameManagerReapsEmptyHubs checks that a hub survives as long as any
// connection is attached and is torn down once the last one detaches, so a
// reconnect gets a fresh hub.
func TestGameManagerReapsEmptyHubs(t *testing.T) {
	gm, store := newTestManager()
	cfg := &Config{}
	lobby := store.Create("Default Lobby", "")

	hub, c1 := attachTestClient(t, gm, cfg, lobby, "u1")
	hub2, c2 := attachTestClient(t, gm, cfg, lobby, "u2")
	if hub != hub2 {
		t.Fatal("both connections should share one hub")
	}

	hub.unreg <- c1
	if n := hubCount(gm); n != 1 {
		t.Fatalf("hub reaped while a client is still attached (count=%d)", n)
	}

	hub.unreg <- c2
	waitForHubCount(t, gm, 0)

	fresh := gm.attach(cfg, lobby)
	if fresh == hub {
		t.Error("reconnect after teardown should get a fresh hub")
	}
	fresh.unreg <- &Client{send: make(chan any, 8)}
	waitForHubCount(t, gm, 0)
}
