// internal/puzzle/types.go
//
// Core type definitions for puzzle generation.
// Defines:
//   - Puzzle: the five chosen words, their segments, and the shuffled tile pool.
//   - Certifier: anything that can vouch for a candidate tile pool.
//   - Size constants shared by the segmenter, enumerator and generator.

package puzzle

import "context"

const (
	// NumWords is how many quartile words make up one puzzle.
	NumWords = 5
	// SegmentsPerWord is how many tiles each quartile word is cut into.
	SegmentsPerWord = 4

	MinSegmentLen = 2
	MaxSegmentLen = 4

	// MinWordLen/MaxWordLen bound the words that can be cut into exactly
	// SegmentsPerWord segments of MinSegmentLen..MaxSegmentLen.
	MinWordLen = SegmentsPerWord * MinSegmentLen
	MaxWordLen = SegmentsPerWord * MaxSegmentLen

	// WinScore is the score a player needs to win.
	WinScore = 100
	// QuartilePoints is what a found quartile is worth (4 tiles, doubled).
	QuartilePoints = SegmentsPerWord * 2
)

// Puzzle is a committed deal. It is immutable once returned by a Generator.
type Puzzle struct {
	Words    []string            // the quartile words, in the order they were drawn
	Segments map[string][]string // word → its segments, in original order
	Tiles    []string            // all segments, shuffled; index is the tile identity
}

// QuartileSegments returns the segment lists in Words order.
func (p *Puzzle) QuartileSegments() [][]string {
	out := make([][]string, 0, len(p.Words))
	for _, w := range p.Words {
		out = append(out, p.Segments[w])
	}
	return out
}

// Certifier decides whether a candidate pool is worth handing to a player.
// The Oracle is the production implementation.
type Certifier interface {
	IsWinnable(ctx context.Context, pool []string, quartiles [][]string) (bool, error)
}

// CertifierFunc adapts a plain function to Certifier.
type CertifierFunc func(ctx context.Context, pool []string, quartiles [][]string) (bool, error)

func (f CertifierFunc) IsWinnable(ctx context.Context, pool []string, quartiles [][]string) (bool, error) {
	return f(ctx, pool, quartiles)
}
