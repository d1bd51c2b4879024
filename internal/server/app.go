// Package server initializes and runs the application server. It opens the
// database, applies migrations, selects the blob backend and capability
// token source from configuration, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avolkov/shareit/internal/cryptox"
	"github.com/avolkov/shareit/internal/logging"
	"github.com/avolkov/shareit/internal/server/blob"
	"github.com/avolkov/shareit/internal/server/config"
	"github.com/avolkov/shareit/internal/server/httpapi"
	"github.com/avolkov/shareit/internal/server/repositories/repomanager"
	"github.com/avolkov/shareit/internal/server/services"
	"github.com/avolkov/shareit/internal/server/token"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	accountService *services.AccountService
	fileService    *services.FileService
	linkService    *services.LinkService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	blobs, err := selectBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob backend init error: %w", err)
	}

	source := selectTokenSource(cfg, db, repos)

	as := services.NewAccountService(db, repos, cryptox.NewAlphanumericKeyGenerator(), logger)
	fs := services.NewFileService(db, repos, blobs, cryptox.NewXORStreamCipher(), logger)
	ls := services.NewLinkService(db, repos, source, logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		accountService: as,
		fileService:    fs,
		linkService:    ls,
	}, nil
}

func selectBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return blob.NewS3Store(ctx, blob.S3Options{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	case config.BlobBackendFS:
		return blob.NewFSStore(cfg.UploadDir), nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %q", cfg.BlobBackend)
	}
}

func selectTokenSource(cfg *config.Config, db *sql.DB, repos repomanager.RepositoryManager) token.Source {
	if cfg.TokenSource == config.TokenSourceNameHash {
		return token.NewNameHashSource()
	}
	return token.NewRandomSource(func(ctx context.Context, tok string) (bool, error) {
		return repos.Links(db).TokenExists(ctx, tok)
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger,
		app.accountService, app.fileService, app.linkService,
		app.config.SecretKey, app.config.TokenValidityDuration)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
