package puzzle

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Oracle certifies tile pools by checking that a player could, in theory,
// reach the target score with them.
//
// The check is optimistic in two ways. It assumes every quartile gets found,
// and it treats the pool as a set of distinct segment strings, so a word
// needing the same segment twice counts even when only one such tile exists.
// That looseness is intentional until someone decides certification should
// be stricter.
type Oracle struct {
	words   []string
	target  int
	workers int
}

// OracleOption configures an Oracle.
type OracleOption func(*Oracle)

// WithTarget overrides the score the oracle must prove reachable.
func WithTarget(score int) OracleOption {
	return func(o *Oracle) {
		o.target = score
	}
}

// WithWorkers sets how many goroutines share the dictionary scan.
func WithWorkers(n int) OracleOption {
	return func(o *Oracle) {
		o.workers = n
	}
}

// NewOracle builds an oracle over the given dictionary words.
// The slice is read, never modified.
func NewOracle(words []string, opts ...OracleOption) *Oracle {
	o := &Oracle{words: words, target: WinScore, workers: 1}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = 1
	}
	return o
}

// IsWinnable reports whether pool can reach the target score.
//
// Scoring starts at QuartilePoints per quartile. Every dictionary word that
// can be fully covered by pool segments then adds the chunk count of the
// first covering partition found (depth-first, shortest chunks first). The
// scan stops as soon as the running total reaches the target.
//
// The result does not depend on scan order, so the dictionary is split into
// shards that are scanned concurrently. A cancelled ctx aborts the scan and
// returns ctx's error.
func (o *Oracle) IsWinnable(ctx context.Context, pool []string, quartiles [][]string) (bool, error) {
	target := int64(o.target)
	var total atomic.Int64
	total.Store(int64(len(quartiles) * QuartilePoints))
	if total.Load() >= target {
		return true, nil
	}

	has := make(map[string]struct{}, len(pool))
	for _, s := range pool {
		has[s] = struct{}{}
	}
	inPool := func(s string) bool {
		_, ok := has[s]
		return ok
	}

	scanCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(scanCtx)

	shard := (len(o.words) + o.workers - 1) / o.workers
	for start := 0; start < len(o.words); start += shard {
		words := o.words[start:min(start+shard, len(o.words))]
		g.Go(func() error {
			for i, w := range words {
				if i&0xff == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				for split := range Splits(w, inPool) {
					if total.Add(int64(len(split))) >= target {
						stop()
						return nil
					}
					break
				}
			}
			return nil
		})
	}
	err := g.Wait()

	if total.Load() >= target {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return false, err
}
