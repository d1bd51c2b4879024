package links

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, link *models.ShareLink) error {
	file, err := json.Marshal(link.File)
	if err != nil {
		return fmt.Errorf("marshalling file snapshot: %w", err)
	}

	query :=
		`INSERT INTO links (token, owner_id, owner_name, owner_email, file, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err = r.db.ExecContext(ctx, query,
		link.Token, link.Owner.ID, link.Owner.Name, link.Owner.Email, file, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	query :=
		`SELECT token, owner_id, owner_name, owner_email, file, created_at FROM links
		 WHERE token = $1
		 `

	link := &models.ShareLink{}
	var file []byte
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&link.Token, &link.Owner.ID, &link.Owner.Name, &link.Owner.Email, &file, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(file, &link.File); err != nil {
		return nil, fmt.Errorf("%w: corrupt file snapshot for token %s: %v", common.ErrorInternal, token, err)
	}
	return link, nil
}

func (r *PostgresRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE token = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error) {
	query :=
		`SELECT token, owner_id, owner_name, owner_email, file, created_at FROM links
		 WHERE owner_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareLink
	for rows.Next() {
		link := &models.ShareLink{}
		var file []byte
		if err := rows.Scan(&link.Token, &link.Owner.ID, &link.Owner.Name, &link.Owner.Email, &file, &link.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(file, &link.File); err != nil {
			return nil, fmt.Errorf("%w: corrupt file snapshot for token %s: %v", common.ErrorInternal, link.Token, err)
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByTokenAndOwner(ctx context.Context, token, ownerID string) error {
	query := `DELETE FROM links WHERE token = $1 AND owner_id = $2`

	if _, err := r.db.ExecContext(ctx, query, token, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
