package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/metrics"
	"drive-search-bot/internal/usecase"
)

const requestTimeout = 30 * time.Second

// Server exposes health, Prometheus metrics and the admin stats API.
type Server struct {
	stats   usecase.StatsUseCase
	apiKey  string
	metrics http.Handler
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(stats usecase.StatsUseCase, apiKey string, logger *zerolog.Logger) *Server {
	return &Server{
		stats:   stats,
		apiKey:  apiKey,
		metrics: metrics.Handler(),
		log:     logger,
	}
}

// Router builds the chi router. Only /api routes require the API key.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(traceID, s.requestLog, s.recoverer, timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// Start blocks serving on port until Shutdown is called.
func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type statsResponse struct {
	Users         int   `json:"users"`
	ActiveUsers   int   `json:"active_users_30d"`
	Chats         int   `json:"chats"`
	Groups        int   `json:"groups"`
	Channels      int   `json:"channels"`
	DriveFiles    *int  `json:"drive_files"`
	IndexedFiles  int   `json:"indexed_files"`
	TotalSearches int64 `json:"total_searches"`
}

// handleStats serves the /stats dashboard as JSON. ?deep=true adds the
// recursive Drive count; drive_files is null when Drive was not counted.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	deep := strings.EqualFold(r.URL.Query().Get("deep"), "true")
	st, err := s.stats.Collect(r.Context(), deep)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("collect stats")
		http.Error(w, "Failed to collect stats", http.StatusInternalServerError)
		return
	}
	resp := statsResponse{
		Users:         st.Users,
		ActiveUsers:   st.ActiveUsers,
		Chats:         st.Chats.Total,
		Groups:        st.Chats.Groups,
		Channels:      st.Chats.Channels,
		IndexedFiles:  st.IndexedFiles,
		TotalSearches: st.TotalSearches,
	}
	if st.DriveCounted {
		n := st.DriveFiles
		resp.DriveFiles = &n
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// authMiddleware checks a static Bearer API key. An unset key disables the API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.apiKey)) != 1 {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		logging.With(r.Context(), s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.With(r.Context(), s.log).Error().Interface("panic", rec).Msg("panic recovered")
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
