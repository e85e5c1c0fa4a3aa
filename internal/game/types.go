// internal/game/types.go
//
// Core type definitions for the Quartiles scoring engine.
// Defines:
//   - Outcome/Reason: how a submission was resolved.
//   - Result: what the presentation layer gets back per submission.
//   - Game: the full state of one game session.
//   - View: a JSON-friendly snapshot of a Game.

package game

import (
	"sync"

	"github.com/robalobadob/quartiles/internal/puzzle"
)

// Outcome says whether a submission scored.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Reason explains a rejected submission.
//   - "empty":      no tiles were selected.
//   - "duplicate":  the word was already accepted earlier in this game.
//   - "not-a-word": the tiles do not spell a dictionary word.
type Reason string

const (
	ReasonEmpty     Reason = "empty"
	ReasonDuplicate Reason = "duplicate"
	ReasonNotAWord  Reason = "not-a-word"
)

// Scoring constants.
const (
	// BonusPoints is added once, when every quartile has been found.
	BonusPoints = 50
)

// Result is the outcome of a single submission.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	Reason   Reason  `json:"reason,omitempty"`
	Word     string  `json:"word,omitempty"`
	Points   int     `json:"points"`          // points for the word itself
	Bonus    int     `json:"bonus,omitempty"` // all-quartiles bonus, if it fired
	Quartile bool    `json:"quartile"`
	Win      bool    `json:"win"`
	Score    int     `json:"score"` // running total after this submission
	Message  string  `json:"message"`
}

// Dictionary is the word lookup the engine scores against.
type Dictionary interface {
	Contains(word string) bool
}

// Game holds the state of a single Quartiles session.
// All exported methods are safe for concurrent use.
type Game struct {
	mu sync.Mutex

	ID           string              // Unique game identifier (UUID).
	Puzzle       *puzzle.Puzzle      // The committed deal; never modified.
	Score        int                 // Running score.
	Submitted    map[string]struct{} // Accepted words (lowercased).
	Found        map[string]struct{} // Quartile words reconstructed so far.
	FoundTiles   []int               // Tile indices of found quartiles, for locking in the UI.
	Selection    []int               // Currently selected tile indices, in selection order.
	BonusAwarded bool                // True once the all-quartiles bonus has been added.
	Won          bool                // True once Score reached puzzle.WinScore.

	dict Dictionary
}

// View is a read-only snapshot of a Game for rendering.
type View struct {
	ID           string   `json:"id"`
	State        string   `json:"state"` // "playing" | "won"
	Tiles        []string `json:"tiles"`
	Selection    []int    `json:"selection"`
	CurrentWord  string   `json:"currentWord"`
	Score        int      `json:"score"`
	Submitted    []string `json:"submitted"`
	Found        []string `json:"found"`
	FoundTiles   []int    `json:"foundTiles"`
	BonusAwarded bool     `json:"bonusAwarded"`
	Won          bool     `json:"won"`
}
