// Package httpapi exposes the account, file and share-link services over a
// JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avolkov/shareit/internal/logging"
	"github.com/avolkov/shareit/internal/server/models"
	"github.com/avolkov/shareit/internal/server/services"
)

type accountSvc interface {
	Create(ctx context.Context, name, email string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

type fileSvc interface {
	Upload(ctx context.Context, ownerID, name, mimeType string, content []byte) (*models.FileNode, error)
	CreateFolder(ctx context.Context, ownerID, name, parentID string) (*models.FileNode, error)
	List(ctx context.Context, ownerID string) ([]*models.FileNode, error)
	Download(ctx context.Context, ownerID, fileID string) (*services.DownloadResult, error)
	DownloadShared(ctx context.Context, shareToken string) (*services.DownloadResult, error)
	Delete(ctx context.Context, ownerID, fileID string) error
}

type linkSvc interface {
	Share(ctx context.Context, ownerID, fileID string) (string, error)
	Resolve(ctx context.Context, tok string) (*models.ShareLink, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error)
	Revoke(ctx context.Context, ownerID, tok string) error
}

type HTTPServer struct {
	address       string
	logger        logging.Logger
	accounts      accountSvc
	files         fileSvc
	links         linkSvc
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewHTTPServer(a string, l logging.Logger, as accountSvc, fs fileSvc, ls linkSvc, secretKey string, tokenValidity time.Duration) (*HTTPServer, error) {
	return &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		accounts:      as,
		files:         fs,
		links:         ls,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}, nil
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)

	mux.HandleFunc("POST /api/files", s.withAuth(s.handleUpload))
	mux.HandleFunc("GET /api/files", s.withAuth(s.handleList))
	mux.HandleFunc("POST /api/folders", s.withAuth(s.handleCreateFolder))
	mux.HandleFunc("GET /api/files/{id}/content", s.withAuth(s.handleDownload))
	mux.HandleFunc("DELETE /api/files/{id}", s.withAuth(s.handleDelete))
	mux.HandleFunc("POST /api/files/{id}/share", s.withAuth(s.handleShare))
	mux.HandleFunc("GET /api/links", s.withAuth(s.handleListLinks))
	mux.HandleFunc("DELETE /api/links/{token}", s.withAuth(s.handleRevoke))

	// capability endpoints, no identity required
	mux.HandleFunc("GET /api/shared/{token}", s.handleSharedMeta)
	mux.HandleFunc("GET /api/shared/{token}/content", s.handleSharedContent)

	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
