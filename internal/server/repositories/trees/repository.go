package trees

import (
	"context"

	"github.com/avolkov/shareit/internal/server/models"
)

// Repository persists one whole tree document per owner. Save replaces the
// entire document; there is no partial patch.
type Repository interface {
	Load(ctx context.Context, ownerID string) ([]*models.FileNode, error)
	Save(ctx context.Context, ownerID string, nodes []*models.FileNode) error
}
