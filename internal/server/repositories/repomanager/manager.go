package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkov/shareit/internal/dbx"
	"github.com/avolkov/shareit/internal/server/repositories/links"
	"github.com/avolkov/shareit/internal/server/repositories/trees"
	"github.com/avolkov/shareit/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Trees(db dbx.DBTX) trees.Repository
	Links(db dbx.DBTX) links.Repository
}
