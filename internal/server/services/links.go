package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avolkov/shareit/internal/common"
	"github.com/avolkov/shareit/internal/logging"
	"github.com/avolkov/shareit/internal/server/models"
	"github.com/avolkov/shareit/internal/server/repositories/repomanager"
	"github.com/avolkov/shareit/internal/server/token"
	"github.com/avolkov/shareit/internal/server/tree"
)

// LinkService mints and resolves the capability tokens granting read
// access to a single file.
type LinkService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	source token.Source
	logger logging.Logger
}

func NewLinkService(db *sql.DB, repos repomanager.RepositoryManager, source token.Source, logger logging.Logger) *LinkService {
	return &LinkService{
		db:     db,
		repos:  repos,
		source: source,
		logger: logger.With("module", "links"),
	}
}

// Share resolves fileID in the owner's tree and registers a new link
// holding a snapshot copy of the node; later renames or moves of the live
// node never reach the link.
func (s *LinkService) Share(ctx context.Context, ownerID, fileID string) (string, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}

	nodes, err := s.repos.Trees(s.db).Load(ctx, ownerID)
	if err != nil {
		return "", err
	}
	node := tree.FindByID(nodes, fileID)
	if node == nil {
		return "", common.ErrorNotFound
	}

	tok, err := s.source.Mint(ctx, node.Name)
	if err != nil {
		return "", err
	}

	link := &models.ShareLink{
		Token:     tok,
		File:      node.Clone(),
		Owner:     user.Identity(),
		CreatedAt: time.Now(),
	}
	if err := s.repos.Links(s.db).Create(ctx, link); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "link minted", "owner", ownerID, "file", fileID)
	return tok, nil
}

// Resolve returns the link registered for the token, or ErrorNotFound.
func (s *LinkService) Resolve(ctx context.Context, tok string) (*models.ShareLink, error) {
	return s.repos.Links(s.db).GetByToken(ctx, tok)
}

// ListByOwner returns every link the owner has created.
func (s *LinkService) ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error) {
	return s.repos.Links(s.db).ListByOwner(ctx, ownerID)
}

// Revoke deletes the link if it belongs to the owner; a token owned by
// someone else, or already gone, is a silent no-op.
func (s *LinkService) Revoke(ctx context.Context, ownerID, tok string) error {
	return s.repos.Links(s.db).DeleteByTokenAndOwner(ctx, tok, ownerID)
}
