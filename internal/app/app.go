package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-videotube/internal/config"
	"go-videotube/internal/database"
	"go-videotube/internal/event"
	"go-videotube/internal/handler"
	"go-videotube/internal/middleware"
	"go-videotube/internal/password"
	"go-videotube/internal/repository"
	"go-videotube/internal/router"
	"go-videotube/internal/service"
	"go-videotube/internal/session"
	"go-videotube/internal/storage"
	"go-videotube/internal/token"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	tokenCfg := token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        cfg.TokenIssuer,
	}
	issuer, err := token.NewIssuer(tokenCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	staging, err := storage.NewStaging(cfg.UploadStagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload staging: %w", err)
	}

	uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	}, staging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, database.Options{
		URL:              cfg.DatabaseURL,
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		StatementTimeout: cfg.DBStatementTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	socialRepo := repository.NewSocialRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	bus := event.NewBus(256)
	auditService := service.NewAuditService(auditRepo)
	auditCtx, auditCancel := context.WithCancel(context.Background())
	auditDone := make(chan struct{})
	go func() {
		defer close(auditDone)
		auditService.Run(auditCtx, bus)
	}()

	transport := session.NewTransport(session.Options{
		Insecure:    cfg.InsecureCookies,
		MaxBodySize: cfg.MaxJSONBody,
	})

	authService := service.NewAuthService(service.AuthDeps{
		Users:    userRepo,
		Hasher:   password.NewBcrypt(cfg.BcryptCost),
		Issuer:   issuer,
		Refresh:  token.NewRefreshVerifier(tokenCfg),
		Uploader: uploader,
		Staging:  staging,
		Bus:      bus,
	})
	channelService := service.NewChannelService(userRepo, socialRepo)

	authMiddleware := middleware.NewAuthMiddleware(token.NewAccessVerifier(tokenCfg), transport)
	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, transport, staging, cfg.MaxAvatarSize),
		Channel: handler.NewChannelHandler(channelService),
		Audit:   handler.NewAuditHandler(auditService),
		Health:  handler.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				auditCancel()
				<-auditDone
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// Audit consumer and pool close after the listener has drained.
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
