package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "modernc.org/sqlite"

	"samachar/internal/auth"
	"samachar/internal/core"
	"samachar/internal/news"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server wires configuration, storage, auth and the news proxy behind one
// HTTP server.
type Server struct {
	config      *core.Config
	logger      *core.Logger
	db          *sql.DB
	authService *auth.Service
	newsService *news.Service
	server      *http.Server

	sweeperCancel context.CancelFunc
}

// New builds a fully wired server from environment configuration.
func New(logger *core.Logger) (*Server, error) {
	config, err := core.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("sqlite", config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	coreDB := core.NewDatabase(db, logger)
	if err := coreDB.PingWithTimeout(5 * time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	authService := auth.NewService(coreDB, logger, config)
	newsService := news.NewService(config.News, logger)

	srv := &Server{
		config:      config,
		logger:      logger,
		db:          db,
		authService: authService,
		newsService: newsService,
	}

	if err := srv.initDatabase(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	srv.setupRoutes()

	return srv, nil
}

func (s *Server) initDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.authService.Users().Migrate(ctx)
}

func (s *Server) setupRoutes() {
	authMiddleware := auth.NewMiddleware(s.authService, s.logger)
	authHandlers := auth.NewHandlers(s.authService, s.logger)

	newsValidator := news.NewValidator(s.newsService.Mapper(),
		s.config.News.MaxLimit, s.config.News.MaxSearchLength)
	newsHandlers := news.NewHandlers(s.newsService, newsValidator, s.logger)

	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)
	mux.Use(authMiddleware.Authenticate)

	mux.Get("/api/health", s.healthHandler)

	mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.Register)
		r.Post("/login", authHandlers.Login)

		r.Get("/me", authMiddleware.RequireAuthenticatedUser(authHandlers.Me))
		r.Put("/profile", authMiddleware.RequireAuthenticatedUser(authHandlers.UpdateProfile))
		r.Post("/logout", authMiddleware.RequireAuthenticatedUser(authHandlers.Logout))
	})

	mux.Route("/api/news", func(r chi.Router) {
		r.Get("/", authMiddleware.RequireAuthenticatedUser(newsHandlers.GetNews))
		r.Get("/search", authMiddleware.RequireAuthenticatedUser(newsHandlers.SearchNews))
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: mux,
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"status":      "OK",
		"message":     "Samachar API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.config.Server.Environment,
		"version":     Version,
	})
}

// Start launches the cache sweeper and the HTTP server. It blocks until the
// server stops.
func (s *Server) Start() error {
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.sweeperCancel = cancel

	if cache, ok := s.newsService.Cache().(*news.MemoryCache); ok {
		cache.StartSweeper(sweepCtx, s.config.News.SweepInterval, s.logger)
	}

	s.logger.Info("Starting server", "host", s.config.Server.Host, "port", s.config.Server.Port)
	return s.server.ListenAndServe()
}

// Shutdown stops the sweeper, drains the HTTP server and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if s.sweeperCancel != nil {
		s.sweeperCancel()
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
