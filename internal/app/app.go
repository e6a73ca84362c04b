package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/vadim/ghostwrite/internal/config"
	httpcontroller "github.com/vadim/ghostwrite/internal/controller/http"
	"github.com/vadim/ghostwrite/internal/controller/web"
	"github.com/vadim/ghostwrite/internal/database"
	"github.com/vadim/ghostwrite/internal/domain/post/dao"
	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/domain/post/service"
	"github.com/vadim/ghostwrite/internal/httpx/upstream/supabase"
	"github.com/vadim/ghostwrite/internal/httpx/upstream/webhook"
	"github.com/vadim/ghostwrite/internal/identity"
	"github.com/vadim/ghostwrite/internal/preview"
	"github.com/vadim/ghostwrite/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	// Infrastructure, nil when the configured backend does not use it
	pg       *pgxpool.Pool
	redis    *redis.Client
	supabase *supabase.Client
	images   *storage.ImageStorage

	identities identity.Provider
	previews   *preview.HTMLRenderer

	// Domain policies (interfaces for HTTP handlers)
	reviewPolicy *policy.Policy
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		app.closeInfrastructure()
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	if err := app.initDomains(ctx); err != nil {
		app.closeInfrastructure()
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	// Register routes
	if err := app.registerRoutes(); err != nil {
		app.closeInfrastructure()
		return nil, fmt.Errorf("registering routes: %w", err)
	}

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// initInfrastructure connects to the configured store, identity and image backends
func (a *App) initInfrastructure(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pool, err := database.NewPostgresPool(ctx, database.PoolConfig{
			DSN:          a.cfg.Store.PostgresDSN,
			MaxConns:     a.cfg.Store.MaxConns,
			MinConns:     a.cfg.Store.MinConns,
			ConnLifetime: a.cfg.Store.ConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.pg = pool
		a.logger.Info("connected to postgres")
	default:
		a.supabase = supabase.New(
			a.cfg.Store.SupabaseURL,
			a.cfg.Store.SupabaseAnonKey,
			supabase.WithHTTPClient(&http.Client{Timeout: a.cfg.Store.RESTTimeout}),
		)
	}

	cookieOpts := identity.CookieOptions{
		MaxAge: a.cfg.Identity.CookieMaxAge,
		Secure: a.cfg.Identity.CookieSecure,
	}
	switch a.cfg.Identity.Backend {
	case config.IdentityBackendRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Identity.RedisAddr,
			Password: a.cfg.Identity.RedisPassword,
			DB:       a.cfg.Identity.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.identities = identity.RedisProvider{
			Client:  a.redis,
			TTL:     a.cfg.Identity.SessionTTL,
			Options: cookieOpts,
		}
		a.logger.Info("connected to redis", "addr", a.cfg.Identity.RedisAddr)
	default:
		a.identities = identity.CookieProvider{Options: cookieOpts}
	}

	if a.cfg.S3.Enabled {
		a.images = storage.NewImageStorage(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
		})
	}

	previews, err := preview.NewHTMLRenderer()
	if err != nil {
		return err
	}
	a.previews = previews

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(ctx context.Context) error {
	var (
		postsRepo       dao.PostRepository
		connectionsRepo dao.ConnectionRepository
	)
	if a.pg != nil {
		postsRepo = dao.NewPostPostgres(a.pg)
		connectionsRepo = dao.NewConnectionPostgres(a.pg)
	} else {
		postsRepo = dao.NewPostSupabase(a.supabase)
		connectionsRepo = dao.NewConnectionSupabase(a.supabase)
	}

	postService := service.New(postsRepo, connectionsRepo)

	hooks := webhook.New(webhook.Endpoints{
		GenerateDrafts: a.cfg.Webhooks.GenerateURL,
		ConnectAccount: a.cfg.Webhooks.ConnectURL,
		PublishPost:    a.cfg.Webhooks.PublishURL,
	}, webhook.WithTimeout(a.cfg.Webhooks.Timeout))

	var images policy.ImageStorage
	if a.images != nil {
		images = &imageStorageAdapter{a.images}
	}

	a.reviewPolicy = policy.New(postService, &webhookAdapter{hooks}, images, a.logger,
		policy.WithBoardLimits(a.cfg.Review.MaxBoards, a.cfg.Review.BoardTTL),
	)

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() error {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	// Swagger UI documentation
	swaggerHandler := httpcontroller.NewSwaggerHandler("GhostWrite API", OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	authURL := policy.AuthURLInput{
		AppID:        a.cfg.Meta.AppID,
		GraphVersion: a.cfg.Meta.GraphVersion,
		RedirectURI:  a.cfg.Meta.RedirectURI(),
	}

	// Dashboard pages
	pages, err := web.NewHandler(a.reviewPolicy, a.previews, web.Config{
		AuthURL:       authURL,
		MaxUploadSize: a.cfg.S3.MaxUploadSize,
	}, a.logger)
	if err != nil {
		return err
	}
	a.router.Group(func(r chi.Router) {
		r.Use(identity.Middleware(a.identities, a.cfg.Identity.DefaultUserID))
		pages.RegisterRoutes(r)
	})

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   a.cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler)
		r.Use(identity.Middleware(a.identities, a.cfg.Identity.DefaultUserID))

		httpcontroller.NewIdentityHandler().RegisterRoutes(r)
		httpcontroller.NewDraftHandler(a.reviewPolicy).RegisterRoutes(r)
		httpcontroller.NewCampaignHandler(a.reviewPolicy).RegisterRoutes(r)
		httpcontroller.NewPostHandler(a.reviewPolicy, a.cfg.S3.MaxUploadSize).RegisterRoutes(r)
		httpcontroller.NewConnectionHandler(a.reviewPolicy, authURL).RegisterRoutes(r)
		httpcontroller.NewCalendarHandler(a.reviewPolicy).RegisterRoutes(r)
	})

	return nil
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler reports whether the configured backends are reachable
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	if a.pg != nil {
		if err := a.pg.Ping(ctx); err != nil {
			a.logger.Warn("postgres not ready", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable","component":"postgres"}`))
			return
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.logger.Warn("redis not ready", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable","component":"redis"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Channel to receive errors from server
	errCh := make(chan error, 1)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	a.closeInfrastructure()

	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) closeInfrastructure() {
	if a.pg != nil {
		a.pg.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis", "error", err)
		}
	}
}

// webhookAdapter adapts webhook.Client to policy.Webhooks
type webhookAdapter struct {
	client *webhook.Client
}

func (a *webhookAdapter) GenerateDrafts(ctx context.Context, userID, text string) error {
	return a.client.GenerateDrafts(ctx, webhook.GenerateDraftsInput{UserID: userID, Text: text})
}

func (a *webhookAdapter) ConnectAccount(ctx context.Context, code, state, userID string) error {
	return a.client.ConnectAccount(ctx, webhook.ConnectAccountInput{Code: code, State: state, UserID: userID})
}

func (a *webhookAdapter) PublishPost(ctx context.Context, postID, pageID, userID string) error {
	return a.client.PublishPost(ctx, webhook.PublishPostInput{PostID: postID, PageID: pageID, UserID: userID})
}

// imageStorageAdapter adapts storage.ImageStorage to policy.ImageStorage
type imageStorageAdapter struct {
	storage *storage.ImageStorage
}

func (a *imageStorageAdapter) Upload(ctx context.Context, postID string, in policy.UploadInput) (*policy.UploadOutput, error) {
	out, err := a.storage.Upload(ctx, postID, storage.UploadInput{
		Reader:      in.Reader,
		ContentType: in.ContentType,
		Size:        in.Size,
		Filename:    in.Filename,
	})
	if err != nil {
		return nil, err
	}
	return &policy.UploadOutput{
		Key: out.Key,
		URL: out.URL,
	}, nil
}
