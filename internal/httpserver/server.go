// internal/httpserver/server.go
//
// HTTP server wiring for the Quartiles backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - POST /game/new hands out a certified puzzle and a session token.
//   - Session endpoints (Bearer token): GET /game, POST /game/select,
//     POST /game/clear, POST /game/submit.
//   - Daily puzzle mode: mounted in routes_daily.go.
//
// Notes:
//   - The session token is an HS256 JWT whose "gid" claim names the game.
//     Anyone holding it can play that game; there are no accounts.
//   - Puzzles come from a PuzzleSource (normally the background puzzle.Queue)
//     so a request never runs a full dictionary scan unless the queue is dry.
//   - Once a game is won further submits get 409 game_finished.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/quartiles/internal/daily"
	"github.com/robalobadob/quartiles/internal/game"
	"github.com/robalobadob/quartiles/internal/puzzle"
	"github.com/robalobadob/quartiles/internal/store"
	"github.com/robalobadob/quartiles/internal/words"
)

// PuzzleSource hands out certified puzzles. *puzzle.Queue implements it.
type PuzzleSource interface {
	Next(ctx context.Context) (*puzzle.Puzzle, error)
}

// DailySource generates the puzzle for a UTC date. It must be deterministic.
type DailySource func(ctx context.Context, date time.Time) (*puzzle.Puzzle, error)

// Options carries the server's dependencies.
type Options struct {
	Store      store.Store
	Words      *words.Dictionary
	Candidates int // reported by /debug/words
	Puzzles    PuzzleSource
	Daily      DailySource

	JWTSecret    []byte
	SessionTTL   time.Duration
	ClientOrigin string
	GenTimeout   time.Duration

	Now func() time.Time // defaults to time.Now
}

// Server bundles the router and its dependencies.
type Server struct {
	r     *chi.Mux
	opts  Options
	daily *dailyPuzzles
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.GenTimeout <= 0 {
		opts.GenTimeout = 20 * time.Second
	}
	s := &Server{r: chi.NewRouter(), opts: opts, daily: &dailyPuzzles{gen: opts.Daily}}

	// Handlers may wait on puzzle generation; leave them room to report a 503.
	timeout := 10 * time.Second
	if opts.GenTimeout >= timeout {
		timeout = opts.GenTimeout + 5*time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)         // add X-Request-ID
	s.r.Use(chimw.RealIP)            // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)         // recover from panics
	s.r.Use(chimw.Timeout(timeout))  // bound handler time
	s.r.Use(jsonContentType)         // default JSON responses
	s.r.Use(cors(opts.ClientOrigin)) // single-origin CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"quartiles-go","endpoints":["/health","POST /game/new","GET /game","POST /game/select","POST /game/clear","POST /game/submit"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		n := 0
		if s.opts.Words != nil {
			n = s.opts.Words.Len()
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"words": n, "candidates": s.opts.Candidates})
	})

	// --- game ---
	s.r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleGetGame)
			r.Post("/select", s.handleSelect)
			r.Post("/clear", s.handleClear)
			r.Post("/submit", s.handleSubmit)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Router exposes the internal router.
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows a single origin to call the API with an Authorization header.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError sends {"error":code}. Codes are fixed identifiers, never user text.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `"}`))
}

// decodeOptional decodes a JSON body into v. An empty body is fine.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Mode string `json:"mode"` // "normal" (default) | "daily"
}

type newGameRes struct {
	GameID    string    `json:"gameId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Mode      string    `json:"mode"`
	Date      string    `json:"date,omitempty"`
	Tiles     []string  `json:"tiles"`
	Score     int       `json:"score"`
}

// handleNewGame takes a puzzle from the queue (or the daily cache), starts a
// game on it and returns a session token for it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.GenTimeout)
	defer cancel()

	res := newGameRes{Mode: req.Mode}
	var (
		p   *puzzle.Puzzle
		err error
	)
	switch req.Mode {
	case "", "normal":
		res.Mode = "normal"
		p, err = s.opts.Puzzles.Next(ctx)
	case "daily":
		now := s.opts.Now()
		res.Date = daily.DateKey(now)
		p, err = s.daily.get(ctx, now)
	default:
		writeError(w, http.StatusBadRequest, "bad_mode")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("mode", res.Mode).Msg("no puzzle available")
		writeError(w, http.StatusServiceUnavailable, "generation_failed")
		return
	}

	g := game.New(p, s.opts.Words)
	if err := s.opts.Store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	token, exp, err := s.signSession(g.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign session")
		writeError(w, http.StatusInternalServerError, "token_failed")
		return
	}

	log.Info().Str("gameId", g.ID).Str("mode", res.Mode).Msg("game started")
	res.GameID = g.ID
	res.Token = token
	res.ExpiresAt = exp
	res.Tiles = g.Puzzle.Tiles
	res.Score = g.Score
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	_ = json.NewEncoder(w).Encode(g.View())
}

type selectReq struct {
	Index *int `json:"index"`
}

// handleSelect toggles one tile in or out of the selection.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := g.Toggle(*req.Index); err != nil {
		writeError(w, http.StatusBadRequest, "bad_index")
		return
	}
	s.touch(r.Context(), g)
	_ = json.NewEncoder(w).Encode(g.View())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	g.ClearSelection()
	s.touch(r.Context(), g)
	_ = json.NewEncoder(w).Encode(g.View())
}

type submitReq struct {
	Tiles []int `json:"tiles"` // when present, replaces the selection
}

type submitRes struct {
	Result game.Result `json:"result"`
	Game   game.View   `json:"game"`
}

// handleSubmit scores the selection, or the tiles in the body if given.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	if g.Finished() {
		writeError(w, http.StatusConflict, "game_finished")
		return
	}
	var req submitReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	var res game.Result
	if req.Tiles != nil {
		var err error
		if res, err = g.SubmitTiles(req.Tiles); err != nil {
			writeError(w, http.StatusBadRequest, "bad_tiles")
			return
		}
	} else {
		res = g.SubmitSelection()
	}

	ev := log.Debug()
	if res.Win {
		ev = log.Info()
	}
	ev.Str("gameId", g.ID).Str("outcome", string(res.Outcome)).Str("word", res.Word).
		Int("score", res.Score).Bool("win", res.Win).Msg("submission")

	s.touch(r.Context(), g)
	_ = json.NewEncoder(w).Encode(submitRes{Result: res, Game: g.View()})
}

// touch re-saves g so the store sees the session as active.
func (s *Server) touch(ctx context.Context, g *game.Game) {
	if err := s.opts.Store.Save(ctx, g); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("save game")
	}
}

// ------------------------------ sessions -----------------------------------

// sessionClaims binds a token to one game.
type sessionClaims struct {
	GameID string `json:"gid"`
	jwt.RegisteredClaims
}

// signSession creates an HS256 token for gameID that expires after SessionTTL.
func (s *Server) signSession(gameID string) (string, time.Time, error) {
	now := s.opts.Now()
	exp := now.Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(s.opts.JWTSecret)
	return ss, exp, err
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

type ctxGameKey struct{}

func gameFrom(ctx context.Context) *game.Game {
	g, _ := ctx.Value(ctxGameKey{}).(*game.Game)
	return g
}

// requireSession enforces a valid session token and injects its game into the
// request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearer(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var claims sessionClaims
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
			return s.opts.JWTSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.opts.Now))
		if err != nil || !token.Valid || claims.GameID == "" {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		g, err := s.opts.Store.Get(r.Context(), claims.GameID)
		if err != nil {
			writeError(w, http.StatusNotFound, "game_not_found")
			return
		}
		ctx := context.WithValue(r.Context(), ctxGameKey{}, g)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
