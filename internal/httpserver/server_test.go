package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/quartiles/internal/game"
	"github.com/robalobadob/quartiles/internal/puzzle"
	"github.com/robalobadob/quartiles/internal/store"
	"github.com/robalobadob/quartiles/internal/words"
)

// fixturePuzzle is unshuffled: grapefruit is tiles 0-3, wonderful 4-7.
func fixturePuzzle() *puzzle.Puzzle {
	ws := []string{"grapefruit", "wonderful", "elephant", "keyboard", "mountain"}
	segs := map[string][]string{
		"grapefruit": {"gr", "ape", "fru", "it"},
		"wonderful":  {"won", "de", "rf", "ul"},
		"elephant":   {"el", "ep", "ha", "nt"},
		"keyboard":   {"ke", "yb", "oa", "rd"},
		"mountain":   {"mo", "un", "ta", "in"},
	}
	var tiles []string
	for _, w := range ws {
		tiles = append(tiles, segs[w]...)
	}
	return &puzzle.Puzzle{Words: ws, Segments: segs, Tiles: tiles}
}

type sourceFunc func(ctx context.Context) (*puzzle.Puzzle, error)

func (f sourceFunc) Next(ctx context.Context) (*puzzle.Puzzle, error) { return f(ctx) }

type testEnv struct {
	srv   *Server
	store *store.Memory
	now   time.Time
}

func newTestEnv(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()
	env := &testEnv{
		store: store.NewMemoryStore(),
		now:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	opts := Options{
		Store:      env.store,
		Words:      words.New([]string{"grapefruit", "wonderful", "elephant", "keyboard", "mountain", "grape", "tain"}),
		Candidates: 5,
		Puzzles: sourceFunc(func(context.Context) (*puzzle.Puzzle, error) {
			return fixturePuzzle(), nil
		}),
		Daily: func(context.Context, time.Time) (*puzzle.Puzzle, error) {
			return fixturePuzzle(), nil
		},
		JWTSecret:  []byte("test-secret"),
		SessionTTL: time.Hour,
		Now:        func() time.Time { return env.now },
	}
	if mutate != nil {
		mutate(&opts)
	}
	env.srv = New(opts)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) newGame(t *testing.T, body string) newGameRes {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/game/new", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res newGameRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndIndex(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/debug/words", "", "")
	assert.JSONEq(t, `{"words":7,"candidates":5}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewGame(t *testing.T) {
	env := newTestEnv(t, nil)

	res := env.newGame(t, "")

	assert.NotEmpty(t, res.GameID)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "normal", res.Mode)
	assert.Len(t, res.Tiles, 20)
	assert.Zero(t, res.Score)
	assert.True(t, env.now.Add(time.Hour).Equal(res.ExpiresAt))
	assert.Equal(t, 1, env.store.Len())
}

func TestNewGame_BadRequests(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/game/new", "", `{"mode":"cheat"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/game/new", "", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewGame_GenerationFailure(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.Puzzles = sourceFunc(func(context.Context) (*puzzle.Puzzle, error) {
			return nil, puzzle.ErrGenerationFailed
		})
	})

	rec := env.do(t, http.MethodPost, "/game/new", "", `{"mode":"normal"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"generation_failed"}`, rec.Body.String())
	assert.Zero(t, env.store.Len())
}

func TestSession_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/game", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/game", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := newTestEnv(t, func(o *Options) { o.JWTSecret = []byte("other") })
	foreign := other.newGame(t, "")
	rec = env.do(t, http.MethodGet, "/game", foreign.Token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "signed with another secret")

	token, _, err := env.srv.signSession("missing")
	require.NoError(t, err)
	rec = env.do(t, http.MethodGet, "/game", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_Expires(t *testing.T) {
	env := newTestEnv(t, nil)
	res := env.newGame(t, "")

	env.now = env.now.Add(2 * time.Hour)
	rec := env.do(t, http.MethodGet, "/game", res.Token, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlayThroughSelection(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.newGame(t, "").Token

	rec := env.do(t, http.MethodPost, "/game/select", tok, `{"index":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/game/select", tok, `{"index":1}`)
	view := decode[game.View](t, rec)
	assert.Equal(t, []int{0, 1}, view.Selection)
	assert.Equal(t, "grape", view.CurrentWord)

	rec = env.do(t, http.MethodPost, "/game/submit", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sub := decode[submitRes](t, rec)
	assert.Equal(t, game.OutcomeAccepted, sub.Result.Outcome)
	assert.Equal(t, 2, sub.Result.Points)
	assert.Empty(t, sub.Game.Selection)

	rec = env.do(t, http.MethodPost, "/game/submit", tok, `{"tiles":[5,4,7,6]}`)
	sub = decode[submitRes](t, rec)
	assert.Equal(t, "dewonulrf", sub.Result.Word)
	assert.Equal(t, game.ReasonNotAWord, sub.Result.Reason)

	rec = env.do(t, http.MethodPost, "/game/submit", tok, `{"tiles":[4,5,6,7]}`)
	sub = decode[submitRes](t, rec)
	assert.True(t, sub.Result.Quartile)
	assert.Equal(t, 10, sub.Game.Score)
	assert.Equal(t, []string{"wonderful"}, sub.Game.Found)
	assert.Equal(t, []int{4, 5, 6, 7}, sub.Game.FoundTiles)

	rec = env.do(t, http.MethodGet, "/game", tok, "")
	assert.Equal(t, 10, decode[game.View](t, rec).Score)
}

func TestSelectAndClear(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.newGame(t, "").Token

	rec := env.do(t, http.MethodPost, "/game/select", tok, `{"index":20}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodPost, "/game/select", tok, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.do(t, http.MethodPost, "/game/select", tok, `{"index":3}`)
	rec = env.do(t, http.MethodPost, "/game/clear", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[game.View](t, rec).Selection)

	rec = env.do(t, http.MethodPost, "/game/submit", tok, `{"tiles":[1,1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAfterWin(t *testing.T) {
	env := newTestEnv(t, nil)
	res := env.newGame(t, "")
	g, err := env.store.Get(t.Context(), res.GameID)
	require.NoError(t, err)
	g.Score = 98

	rec := env.do(t, http.MethodPost, "/game/submit", res.Token, `{"tiles":[0,1]}`)
	sub := decode[submitRes](t, rec)
	require.True(t, sub.Result.Win)
	assert.Equal(t, "won", sub.Game.State)

	rec = env.do(t, http.MethodPost, "/game/submit", res.Token, `{"tiles":[18,19]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"game_finished"}`, rec.Body.String())
}

func TestDailyMode(t *testing.T) {
	calls := 0
	env := newTestEnv(t, func(o *Options) {
		o.Daily = func(ctx context.Context, date time.Time) (*puzzle.Puzzle, error) {
			calls++
			return fixturePuzzle(), nil
		}
	})

	a := env.newGame(t, `{"mode":"daily"}`)
	b := env.newGame(t, `{"mode":"daily"}`)

	assert.Equal(t, "daily", a.Mode)
	assert.Equal(t, "2024-03-01", a.Date)
	assert.NotEqual(t, a.GameID, b.GameID)
	assert.Equal(t, a.Tiles, b.Tiles)
	assert.Equal(t, 1, calls, "second game reuses the cached puzzle")

	env.now = env.now.Add(24 * time.Hour)
	c := env.newGame(t, `{"mode":"daily"}`)
	assert.Equal(t, "2024-03-02", c.Date)
	assert.Equal(t, 2, calls)
}

func TestDailyMode_NotConfigured(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Daily = nil })

	rec := env.do(t, http.MethodPost, "/game/new", "", `{"mode":"daily"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewDailySource_Deterministic(t *testing.T) {
	candidates := []string{"grapefruit", "wonderful", "elephant", "keyboard", "mountain", "sandwich", "broccoli", "pineapple"}
	always := puzzle.CertifierFunc(func(context.Context, []string, [][]string) (bool, error) { return true, nil })
	src := NewDailySource("salt", candidates, always)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a, err := src(t.Context(), day)
	require.NoError(t, err)
	b, err := src(t.Context(), day.Add(6*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, a.Tiles, b.Tiles)
	assert.Equal(t, a.Words, b.Words)
}
