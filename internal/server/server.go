// Package server is the composition root: it opens the stores, builds the
// services and handlers, mounts the routes and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/config"
	"github.com/sakif/flexfolio/internal/demo"
	"github.com/sakif/flexfolio/internal/handler"
	"github.com/sakif/flexfolio/internal/middleware"
	"github.com/sakif/flexfolio/internal/notify"
	sqliteRepo "github.com/sakif/flexfolio/internal/repository/sqlite"
	"github.com/sakif/flexfolio/internal/schema"
	"github.com/sakif/flexfolio/internal/service"
	"github.com/sakif/flexfolio/internal/storage"
	"github.com/sakif/flexfolio/internal/validate"
)

// Deps are the collaborators a Server is built from. New fills them from
// the configuration; tests build them directly.
type Deps struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sqliteRepo.DB

	Limiter   middleware.Limiter
	Notifier  service.Notifier
	Presigner handler.ImagePresigner      // nil disables uploads
	GitHub    handler.GitHubAuthenticator // nil disables GitHub sign-in
	Passwords *auth.PasswordService       // nil means the production bcrypt cost

	closers []io.Closer
}

type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	closers []io.Closer
}

// New opens the database and the optional integrations described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	d := Deps{Config: cfg, Logger: logger, DB: db, closers: []io.Closer{db}}
	d.Limiter = newLimiter(ctx, cfg, logger, &d.closers)

	d.Notifier = notify.Nop{}
	if cfg.SMTP.Enabled() {
		d.Notifier = notify.NewMailer(cfg.SMTP)
		logger.Info("email notifications enabled", slog.String("host", cfg.SMTP.Host))
	}

	if cfg.S3.Enabled() {
		s3, err := storage.New(ctx, cfg.S3)
		if err != nil {
			closeAll(d.closers, logger)
			return nil, fmt.Errorf("configuring storage: %w", err)
		}
		d.Presigner = s3
		logger.Info("profile image uploads enabled", slog.String("bucket", cfg.S3.Bucket))
	}

	if cfg.GitHub.Enabled() {
		d.GitHub = auth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)
		logger.Info("GitHub sign-in enabled")
	}

	s, err := NewWithDeps(d)
	if err != nil {
		closeAll(d.closers, logger)
		return nil, err
	}
	return s, nil
}

// NewWithDeps wires services and handlers and mounts every route.
func NewWithDeps(d Deps) (*Server, error) {
	cfg, logger := d.Config, d.Logger

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords := d.Passwords
	if passwords == nil {
		passwords = auth.NewPasswordService()
	}
	if d.Limiter == nil {
		d.Limiter = middleware.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}

	v := validate.New()
	schemas, err := schema.Load()
	if err != nil {
		return nil, err
	}
	decoder := service.NewPatchDecoder(schemas, v)

	users, content := d.DB.Users(), d.DB.Content()
	authService := service.NewAuthService(users, content, tokens, passwords, v, logger)
	contentService := service.NewContentService(users, content, decoder, logger)
	projectService := service.NewProjectService(d.DB.Projects(), v, logger)
	skillService := service.NewSkillService(d.DB.Skills(), v, logger)
	messageService := service.NewMessageService(d.DB.Messages(), users, d.Notifier, v, logger)
	portfolioService := service.NewPortfolioService(users, contentService, projectService, skillService)

	portfolioHandler, err := handler.NewPortfolioHandler(portfolioService, logger)
	if err != nil {
		return nil, fmt.Errorf("creating portfolio handler: %w", err)
	}

	h := handlers{
		auth:      handler.NewAuthHandler(authService, d.GitHub, tokens.TTL(), cfg.CookieSecure, logger),
		account:   handler.NewAccountHandler(authService, tokens.TTL(), cfg.CookieSecure, logger),
		content:   handler.NewContentHandler(contentService, logger),
		liveEdit:  handler.NewEditHandler(contentService, logger),
		demoEdit:  handler.NewEditHandler(demo.NewEditor(decoder), logger),
		projects:  handler.NewProjectHandler(projectService, logger),
		skills:    handler.NewSkillHandler(skillService, logger),
		messages:  handler.NewMessageHandler(messageService, logger),
		uploads:   handler.NewUploadHandler(d.Presigner, logger),
		portfolio: portfolioHandler,
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      d.DB,
		closers: d.closers,
	}
	s.setupRoutes(h, authService, d.Limiter, d.GitHub != nil)
	return s, nil
}

type handlers struct {
	auth      *handler.AuthHandler
	account   *handler.AccountHandler
	content   *handler.ContentHandler
	liveEdit  *handler.EditHandler
	demoEdit  *handler.EditHandler
	projects  *handler.ProjectHandler
	skills    *handler.SkillHandler
	messages  *handler.MessageHandler
	uploads   *handler.UploadHandler
	portfolio *handler.PortfolioHandler
}

// setupRoutes mounts the middleware stack and every route. Middleware runs
// in the order it is added.
func (s *Server) setupRoutes(h handlers, verifier auth.Verifier, limiter middleware.Limiter, github bool) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.Timeout(s.config.RequestTimeout))

	requireAuth := auth.RequireAuth(verifier)
	optionalAuth := auth.OptionalAuth(verifier)
	authLimit := middleware.RateLimit(limiter, "auth", s.logger)
	contactLimit := middleware.RateLimit(limiter, "contact", s.logger)

	r.Get("/healthz", s.handleHealth)

	// === Identity ===
	r.Route("/auth", func(r chi.Router) {
		r.With(authLimit).Post("/register", h.auth.HandleRegister)
		r.With(authLimit).Post("/login", h.auth.HandleLogin)
		r.Post("/logout", h.auth.HandleLogout)
		r.With(optionalAuth).Get("/session", h.auth.HandleSession)
		if github {
			r.Get("/github/login", h.auth.HandleGitHubLogin)
			r.With(optionalAuth).Get("/github/callback", h.auth.HandleGitHubCallback)
		}
	})

	// === Public reads ===
	r.Get("/content/{username}", h.content.HandlePublic)
	r.Get("/portfolio/{username}", h.portfolio.HandleJSON)
	r.Get("/u/{username}", h.portfolio.HandlePage)
	r.With(contactLimit).Post("/messages", h.messages.HandleSend)

	// === Demo ===
	r.Get("/demo", h.portfolio.HandleDemoPage)
	r.Get("/demo/portfolio", h.portfolio.HandleDemoJSON)
	r.Patch("/demo/content/{section}", h.demoEdit.HandlePatch)

	// === Owner dashboard ===
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/api/content", h.content.HandleOwn)
		r.Patch("/content/{userId}/{section}", h.liveEdit.HandlePatch)

		r.Get("/projects", h.projects.HandleList)
		r.Post("/projects", h.projects.HandleCreate)
		r.Get("/projects/{id}", h.projects.HandleGet)
		r.Put("/projects/{id}", h.projects.HandleUpdate)
		r.Delete("/projects/{id}", h.projects.HandleDelete)

		r.Get("/skills", h.skills.HandleList)
		r.Post("/skills", h.skills.HandleCreate)
		r.Get("/skills/{id}", h.skills.HandleGet)
		r.Put("/skills/{id}", h.skills.HandleUpdate)
		r.Delete("/skills/{id}", h.skills.HandleDelete)

		r.Get("/messages", h.messages.HandleList)
		r.Get("/messages/unread-count", h.messages.HandleUnreadCount)
		r.Get("/messages/{id}", h.messages.HandleGet)
		r.Put("/messages/{id}", h.messages.HandleMarkRead)
		r.Delete("/messages/{id}", h.messages.HandleDelete)

		r.Get("/account", h.account.HandleGet)
		r.Put("/account", h.account.HandleUpdate)
		r.Put("/account/password", h.account.HandlePassword)
		r.Put("/account/status", h.account.HandleStatus)

		r.Post("/uploads/profile-image", h.uploads.HandleProfileImage)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}` + "\n"))
		return
	}
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the stores.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.config.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// Close releases the database and any other owned connections.
func (s *Server) Close() {
	closeAll(s.closers, s.logger)
	s.closers = nil
}

func closeAll(closers []io.Closer, logger *slog.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}

// newLimiter uses Redis when REDIS_URL is set and reachable, so limits hold
// across instances; otherwise an in-process limiter.
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger, closers *[]io.Closer) middleware.Limiter {
	local := middleware.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if cfg.RedisURL == "" {
		return local
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, using in-process rate limiting", slog.String("error", err.Error()))
		return local
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, using in-process rate limiting", slog.String("error", err.Error()))
		client.Close()
		return local
	}

	*closers = append(*closers, client)
	logger.Info("rate limiting backed by redis")
	return middleware.NewRedisLimiter(client, perMinute(cfg.RateLimitRPS, cfg.RateLimitBurst), time.Minute, "flexfolio:ratelimit")
}

// perMinute converts a token bucket rate into a fixed-window allowance.
func perMinute(rps float64, burst int) int {
	return max(int(math.Ceil(rps*60)), burst)
}
