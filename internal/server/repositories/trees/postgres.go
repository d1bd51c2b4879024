package trees

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avolkov/shareit/internal/common"
	"github.com/avolkov/shareit/internal/dbx"
	"github.com/avolkov/shareit/internal/server/models"
)

// PostgresRepository stores each owner's tree as a single jsonb document.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Load returns the owner's tree, or an empty forest for an owner with no
// document yet.
func (r *PostgresRepository) Load(ctx context.Context, ownerID string) ([]*models.FileNode, error) {
	query :=
		`SELECT nodes FROM trees
		 WHERE owner_id = $1
		 `

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*models.FileNode{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	var nodes []*models.FileNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("%w: corrupt tree document for owner %s: %v", common.ErrorInternal, ownerID, err)
	}
	if nodes == nil {
		nodes = []*models.FileNode{}
	}
	return nodes, nil
}

// Save replaces the owner's whole tree document.
func (r *PostgresRepository) Save(ctx context.Context, ownerID string, nodes []*models.FileNode) error {
	if nodes == nil {
		nodes = []*models.FileNode{}
	}
	raw, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("marshalling tree: %w", err)
	}

	query := `
		INSERT INTO trees (owner_id, nodes, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner_id)
		DO UPDATE SET
			nodes = EXCLUDED.nodes,
			updated_at = now();
	`
	res, err := r.db.ExecContext(ctx, query, ownerID, raw)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
