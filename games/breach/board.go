package breach

import (
	"crypto/rand"
	"fmt"
)

// Board composition. These are configuration constants, not derived values.
const (
	Team1CardCount   = 6
	Team2CardCount   = 5
	PenaltyCardCount = 1
	NeutralCardCount = 4

	BoardSize = Team1CardCount + Team2CardCount + PenaltyCardCount + NeutralCardCount
)

// wordPool is the fixed pool cards draw from, without repetition within one
// board.
var wordPool = []string{
	"ENCRYPT", "FIREWALL", "PROTOCOL", "TERMINAL", "BINARY", "CIPHER",
	"EXPLOIT", "MALWARE", "VIRUS", "BREACH", "HACK", "SENTINEL",
	"SERVER", "PASSWORD", "DATABASE", "ROUTER", "NETWORK", "SECURITY",
	"ACCESS", "DECRYPT", "PROXY", "TROJAN", "PHISHING", "KEYLOGGER",
	"BACKDOOR", "BUFFER", "COOKIE", "DOMAIN", "WORM", "SPYWARE",
	"RANSOMWARE", "BOTNET", "BIOMETRIC", "AUTHENTICATION", "INJECTION", "TOKEN",
}

// ValidateConfig checks that the card composition and word pool are
// consistent. Call it once at startup; GenerateBoard assumes it has passed.
func ValidateConfig() error {
	if len(wordPool) < BoardSize {
		return fmt.Errorf("word pool has %d words, need at least %d", len(wordPool), BoardSize)
	}

	seen := make(map[string]bool, len(wordPool))
	for _, w := range wordPool {
		if seen[w] {
			return fmt.Errorf("duplicate word in pool: %q", w)
		}
		seen[w] = true
	}

	return nil
}

// GenerateBoard produces a fresh board: exactly the configured count of
// cards per type, each with a unique word sampled from the pool, sequential
// ids assigned before the layout is shuffled.
func GenerateBoard() Board {
	board := make(Board, 0, BoardSize)

	for i := 0; i < Team1CardCount; i++ {
		board = append(board, Card{Type: CardTeam1})
	}
	for i := 0; i < Team2CardCount; i++ {
		board = append(board, Card{Type: CardTeam2})
	}
	for i := 0; i < PenaltyCardCount; i++ {
		board = append(board, Card{Type: CardPenalty})
	}
	for i := 0; i < NeutralCardCount; i++ {
		board = append(board, Card{Type: CardNeutral})
	}

	words := make([]string, len(wordPool))
	copy(words, wordPool)
	shuffleStrings(words)

	for i := range board {
		board[i].ID = i + 1
		board[i].Word = words[i]
	}

	shuffleCards(board)

	return board
}

// Fisher-Yates using crypto/rand.
func shuffleStrings(s []string) {
	for i := len(s) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func shuffleCards(c []Card) {
	for i := len(c) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		c[i], c[j] = c[j], c[i]
	}
}

// randIntn returns a uniform random int in [0, n) via rejection sampling.
func randIntn(n int) int {
	max := 256 - (256 % n)
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		if int(b[0]) < max {
			return int(b[0]) % n
		}
	}
}
