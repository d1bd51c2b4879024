package links

import (
	"context"

	"github.com/avolkov/shareit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, link *models.ShareLink) error
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error)
	// DeleteByTokenAndOwner removes the link only when it belongs to
	// ownerID; deleting someone else's (or a missing) token is a no-op.
	DeleteByTokenAndOwner(ctx context.Context, token, ownerID string) error
}
