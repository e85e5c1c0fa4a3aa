// internal/httpserver/routes_daily.go
//
// Daily puzzle mode. POST /game/new with {"mode":"daily"} deals the same
// puzzle to everyone on a UTC date. The day's puzzle is generated on first
// request and held in memory until the date rolls over.

package httpserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/quartiles/internal/daily"
	"github.com/robalobadob/quartiles/internal/puzzle"
)

var errNoDaily = errors.New("daily puzzles are not configured")

// dailyPuzzles caches the puzzle for the current date.
type dailyPuzzles struct {
	gen DailySource

	mu   sync.Mutex // held across generation so concurrent first requests share one run
	date string
	p    *puzzle.Puzzle
}

// get returns the puzzle for now's date, generating it if the cache is stale.
func (d *dailyPuzzles) get(ctx context.Context, now time.Time) (*puzzle.Puzzle, error) {
	if d.gen == nil {
		return nil, errNoDaily
	}
	key := daily.DateKey(now)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.p != nil && d.date == key {
		return d.p, nil
	}
	p, err := d.gen(ctx, now)
	if err != nil {
		return nil, err
	}
	log.Info().Str("date", key).Msg("daily puzzle generated")
	d.date, d.p = key, p
	return p, nil
}

// NewDailySource returns a DailySource dealing from candidates with a
// generator seeded by daily.Rand.
func NewDailySource(salt string, candidates []string, cert puzzle.Certifier, opts ...puzzle.Option) DailySource {
	return func(ctx context.Context, date time.Time) (*puzzle.Puzzle, error) {
		gen := puzzle.NewGenerator(cert, daily.Rand(date, salt), opts...)
		return gen.Generate(ctx, candidates)
	}
}
