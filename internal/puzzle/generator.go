// internal/puzzle/generator.go
//
// Deal generation: draw five candidate words, cut each into four segments,
// and keep the first deal the Certifier accepts.
//
// Notes:
//   - Retries are bounded by MaxAttempts and by the caller's context.
//   - A Generator owns its *rand.Rand and is not safe for concurrent use;
//     give each goroutine its own (see Queue).

package puzzle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
)

// DefaultMaxAttempts bounds Generate when no WithMaxAttempts is given.
const DefaultMaxAttempts = 500

var (
	ErrNotEnoughCandidates = errors.New("puzzle: not enough candidate words")
	ErrGenerationFailed    = errors.New("puzzle: no winnable deal found")
)

// Generator produces certified puzzles.
type Generator struct {
	cert        Certifier
	rng         *rand.Rand
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts caps how many deals Generate tries before giving up.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		g.maxAttempts = n
	}
}

// NewGenerator returns a Generator drawing randomness from rng.
func NewGenerator(cert Certifier, rng *rand.Rand, opts ...Option) *Generator {
	g := &Generator{cert: cert, rng: rng, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(g)
	}
	if g.maxAttempts <= 0 {
		g.maxAttempts = DefaultMaxAttempts
	}
	return g
}

// Generate deals a puzzle from candidates, which must all be
// MinWordLen..MaxWordLen long and distinct.
//
// Each attempt draws NumWords distinct candidates uniformly, segments them and
// asks the Certifier about the unshuffled pool. The first certified pool is
// shuffled and returned. ErrGenerationFailed is returned when the attempt
// budget runs out or ctx ends first.
func (g *Generator) Generate(ctx context.Context, candidates []string) (*Puzzle, error) {
	if len(candidates) < NumWords {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCandidates, len(candidates), NumWords)
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrGenerationFailed, attempt-1, err)
		}

		words := g.pick(candidates)
		segments := make(map[string][]string, len(words))
		pool := make([]string, 0, len(words)*SegmentsPerWord)
		quartiles := make([][]string, 0, len(words))
		for _, w := range words {
			segs := Segment(w, g.rng)
			segments[w] = segs
			quartiles = append(quartiles, segs)
			pool = append(pool, segs...)
		}

		ok, err := g.cert.IsWinnable(ctx, pool, quartiles)
		if err != nil {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrGenerationFailed, attempt, err)
		}
		if !ok {
			log.Debug().Int("attempt", attempt).Strs("words", words).Msg("deal not winnable, retrying")
			continue
		}

		g.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		log.Debug().Int("attempts", attempt).Msg("winnable deal found")
		return &Puzzle{Words: words, Segments: segments, Tiles: pool}, nil
	}

	log.Warn().Int("attempts", g.maxAttempts).Msg("giving up on puzzle generation")
	return nil, fmt.Errorf("%w after %d attempts", ErrGenerationFailed, g.maxAttempts)
}

// pick draws NumWords distinct candidates uniformly without replacement.
// Rejection sampling on indices is cheap because NumWords is tiny next to any
// realistic candidate list.
func (g *Generator) pick(candidates []string) []string {
	seen := make(map[int]struct{}, NumWords)
	out := make([]string, 0, NumWords)
	for len(out) < NumWords {
		i := g.rng.IntN(len(candidates))
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, candidates[i])
	}
	return out
}
