// Package mockapi serves the dashboard's backend contract from memory. It
// answers every request with a result envelope and HTTP 200, the way the
// real backend does, and tracks sessions with an HttpOnly cookie.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"skaladash/internal/client"
	"skaladash/internal/config"
	"skaladash/internal/envelope"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const SessionCookie = "SKALA_SESSION"

type contextKey string

const playerContextKey contextKey = "player"

type Server struct {
	cfg     config.MockConfig
	log     *slog.Logger
	backend *Backend
	mux     *chi.Mux

	mu       sync.RWMutex
	sessions map[string]string
}

// New builds the server around backend. A nil backend starts empty, seeded
// with the default stocks when cfg asks for it.
func New(cfg config.MockConfig, logger *slog.Logger, backend *Backend) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if backend == nil {
		backend = NewBackend()
		if cfg.SeedStock {
			backend.SeedDefaults()
		}
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		backend:  backend,
		mux:      chi.NewRouter(),
		sessions: map[string]string{},
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Backend() *Backend {
	return s.backend
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, ErrSystem.with("지원하지 않는 요청 방식입니다: "+r.Method))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/players", s.handleSignup)
		r.Post("/players/login", s.handleLogin)
		r.Get("/players/list", s.handlePlayersList)
		r.Get("/players/{playerId}", s.handlePlayerDetail)
		r.Get("/stocks/list", s.handleStocksList)
		r.Get("/stocks/{id}", s.handleStockDetail)
		r.Get("/ranking", s.handleRanking)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/players/buy", s.handleBuy)
			r.Post("/players/sell", s.handleSell)
			r.Get("/watchlist", s.handleWatchlist)
			r.Post("/watchlist/add", s.handleWatchAdd)
			r.Delete("/watchlist/remove", s.handleWatchRemove)
		})
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"client_request_id", r.Header.Get("X-Request-Id"),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || strings.TrimSpace(c.Value) == "" {
			writeFailure(w, ErrNotAuthenticated.with("missing session"))
			return
		}
		s.mu.RLock()
		playerID, ok := s.sessions[c.Value]
		s.mu.RUnlock()
		if !ok {
			writeFailure(w, ErrNotAuthenticated.with("unknown session"))
			return
		}
		ctx := context.WithValue(r.Context(), playerContextKey, playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(playerContextKey).(string)
	if !ok || id == "" {
		return "", errors.New("missing auth context")
	}
	return id, nil
}

// Expire forgets every session the server has issued.
func (s *Server) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]string{}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in client.SignupRequest
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.backend.CreatePlayer(in.PlayerID, in.PlayerPassword, in.PlayerMoney); err != nil {
		writeFailure(w, err)
		return
	}
	writeBody(w, nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in client.LoginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	player, err := s.backend.Login(in.PlayerID, in.PlayerPassword)
	if err != nil {
		writeFailure(w, err)
		return
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = player.PlayerID
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeBody(w, map[string]any{"playerId": player.PlayerID, "playerMoney": player.PlayerMoney})
}

func (s *Server) handlePlayersList(w http.ResponseWriter, r *http.Request) {
	offset, count := pageParams(r)
	writeBody(w, s.backend.ListPlayers(offset, count))
}

func (s *Server) handlePlayerDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.backend.Player(chi.URLParam(r, "playerId"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeBody(w, detail)
}

func (s *Server) handleStocksList(w http.ResponseWriter, r *http.Request) {
	offset, count := pageParams(r)
	writeBody(w, s.backend.ListStocks(offset, count))
}

func (s *Server) handleStockDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseStockID(client.StockID(chi.URLParam(r, "id")))
	if err != nil {
		writeFailure(w, err)
		return
	}
	stock, err := s.backend.Stock(id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeBody(w, stock)
}

func (s *Server) handleRanking(w http.ResponseWriter, _ *http.Request) {
	writeBody(w, s.backend.Ranking())
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	s.handleOrder(w, r, s.backend.Buy)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	s.handleOrder(w, r, s.backend.Sell)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request, apply func(string, int64, int) error) {
	playerID, err := playerFromContext(r.Context())
	if err != nil {
		writeFailure(w, ErrNotAuthenticated.with(err.Error()))
		return
	}
	var in client.OrderRequest
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	stockID, err := parseStockID(in.StockID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := apply(playerID, stockID, in.Quantity); err != nil {
		writeFailure(w, err)
		return
	}
	writeBody(w, nil)
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerFromContext(r.Context())
	if err != nil {
		writeFailure(w, ErrNotAuthenticated.with(err.Error()))
		return
	}
	writeBody(w, s.backend.Watchlist(playerID))
}

func (s *Server) handleWatchAdd(w http.ResponseWriter, r *http.Request) {
	s.handleWatchChange(w, r, s.backend.AddWatch)
}

func (s *Server) handleWatchRemove(w http.ResponseWriter, r *http.Request) {
	s.handleWatchChange(w, r, s.backend.RemoveWatch)
}

func (s *Server) handleWatchChange(w http.ResponseWriter, r *http.Request, apply func(string, int64) error) {
	playerID, err := playerFromContext(r.Context())
	if err != nil {
		writeFailure(w, ErrNotAuthenticated.with(err.Error()))
		return
	}
	var in client.WatchRequest
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, err)
		return
	}
	stockID, err := parseStockID(in.StockID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := apply(playerID, stockID); err != nil {
		writeFailure(w, err)
		return
	}
	writeBody(w, nil)
}

func parseStockID(id client.StockID) (int64, error) {
	n, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil {
		return 0, ErrParameter.with("stockId")
	}
	return n, nil
}

func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	count, _ := strconv.Atoi(q.Get("count"))
	return offset, count
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return ErrSystem.with("잘못된 요청 형식(JSON 파싱 오류)")
	}
	return nil
}

func writeBody(w http.ResponseWriter, body any) {
	var raw json.RawMessage
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			writeFailure(w, fmt.Errorf("encode body: %w", err))
			return
		}
		raw = b
	}
	writeJSON(w, http.StatusOK, envelope.Encode(envelope.Success(raw)))
}

func writeFailure(w http.ResponseWriter, err error) {
	be := asBackendError(err)
	writeJSON(w, http.StatusOK, envelope.Encode(envelope.Failure(be.Code, be.Error())))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
