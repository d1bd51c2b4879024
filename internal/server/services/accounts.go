package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/shareit/internal/cryptox"
	"github.com/avolkov/shareit/internal/dbx"
	"github.com/avolkov/shareit/internal/logging"
	"github.com/avolkov/shareit/internal/server/models"
	"github.com/avolkov/shareit/internal/server/repositories/repomanager"
)

// AccountService creates and looks up owner accounts. The per-owner
// encryption key is minted exactly once here, at account creation, and is
// never rotated afterwards.
type AccountService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	keygen cryptox.KeyGenerator
	logger logging.Logger
}

func NewAccountService(db *sql.DB, repos repomanager.RepositoryManager, keygen cryptox.KeyGenerator, logger logging.Logger) *AccountService {
	return &AccountService{
		db:     db,
		repos:  repos,
		keygen: keygen,
		logger: logger.With("module", "accounts"),
	}
}

// Create registers a new owner and initializes their empty tree document
// in the same transaction. Returns ErrorDuplicateAccount when the email is
// already taken.
func (s *AccountService) Create(ctx context.Context, name, email string) (*models.User, error) {
	user := &models.User{
		Name:          name,
		Email:         email,
		EncryptionKey: s.keygen.Generate(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return s.repos.Trees(tx).Save(ctx, user.ID, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info(ctx, "account created", "owner", user.ID)
	return user, nil
}

// Get returns the account record for id.
func (s *AccountService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}
