package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cloud-ru/mcp-investment-sim-go/internal/calculations"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/config"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/tools"
	"github.com/cloud-ru/mcp-investment-sim-go/internal/validators"
)

// maxBodyBytes ограничивает размер тела запроса к инструменту
const maxBodyBytes = 1 << 20

// Config содержит зависимости HTTP-сервера
type Config struct {
	Log    zerolog.Logger
	Config *config.Config
	Tools  map[string]tools.ToolHandler
}

// Server представляет HTTP-транспорт инструментов
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	cfg     *config.Config
	tools   map[string]tools.ToolHandler
	limiter *RateLimiter
}

// New создает HTTP-сервер
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		cfg:     cfg.Config,
		tools:   cfg.Tools,
		limiter: NewRateLimiter(cfg.Config.RateLimitPerMinute),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler возвращает корневой обработчик (для тестов)
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/tools", func(r chi.Router) {
		r.Get("/", s.handleListTools)
		r.With(s.limiter.Middleware).Post("/{name}", s.handleCallTool)
	})
}

// Start запускает HTTP-сервер
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.limiter.Stop()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"tools":  len(s.tools),
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools.Names(s.tools),
	})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	handler, ok := s.tools[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown tool %q", name))
		return
	}

	params := map[string]interface{}{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result, err := handler(r.Context(), params)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error().Err(err).Str("tool", name).Msg("tool call failed")
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusFor сопоставляет ошибку инструмента с HTTP-статусом
func statusFor(err error) int {
	switch {
	case errors.Is(err, calculations.ErrInvalidInput),
		errors.Is(err, validators.ErrOutOfRange),
		errors.Is(err, tools.ErrBadParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// loggingMiddleware логирует HTTP-запросы
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
