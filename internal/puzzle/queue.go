package puzzle

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrQueueClosed is returned by Next once every worker has exited.
var ErrQueueClosed = errors.New("puzzle: queue closed")

const retryBackoff = 500 * time.Millisecond

// Queue keeps a small buffer of certified puzzles so handing one to a player
// does not wait on a dictionary scan.
type Queue struct {
	out        chan *Puzzle
	done       chan struct{}
	candidates []string
	cert       Certifier
	opts       []Option
	workers    int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewQueue returns a stopped queue. Call Start to begin generating.
func NewQueue(workers, size int, candidates []string, cert Certifier, opts ...Option) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 1
	}
	return &Queue{
		out:        make(chan *Puzzle, size),
		done:       make(chan struct{}),
		candidates: candidates,
		cert:       cert,
		opts:       opts,
		workers:    workers,
	}
}

// Start launches the workers. Each owns a Generator with its own PCG source.
func (q *Queue) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	log.Info().Int("workers", q.workers).Int("buffer", cap(q.out)).Msg("starting puzzle queue")

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			q.run(ctx, id, NewGenerator(q.cert, rng, q.opts...))
		}(i + 1)
	}

	go func() {
		q.wg.Wait()
		close(q.done)
	}()
}

func (q *Queue) run(ctx context.Context, id int, gen *Generator) {
	wlog := log.With().Int("worker_id", id).Logger()
	wlog.Debug().Msg("puzzle worker started")
	for {
		p, err := gen.Generate(ctx, q.candidates)
		switch {
		case ctx.Err() != nil:
			wlog.Debug().Msg("puzzle worker shutting down")
			return
		case errors.Is(err, ErrNotEnoughCandidates):
			wlog.Error().Err(err).Msg("puzzle worker cannot generate")
			return
		case err != nil:
			wlog.Warn().Err(err).Msg("generation failed, backing off")
			select {
			case <-time.After(retryBackoff):
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case q.out <- p:
		case <-ctx.Done():
			return
		}
	}
}

// Next returns the next buffered puzzle, waiting for one if necessary.
func (q *Queue) Next(ctx context.Context) (*Puzzle, error) {
	select {
	case p := <-q.out:
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
		select {
		case p := <-q.out:
			return p, nil
		default:
			return nil, ErrQueueClosed
		}
	}
}

// Stop cancels the workers and waits for them to exit.
func (q *Queue) Stop() {
	log.Info().Msg("stopping puzzle queue")
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}
