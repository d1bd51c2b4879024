package trees

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avolkov/shareit/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestLoad_ReturnsNodes(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	doc := `[{"id":"f1","name":"a.txt","type":"text/plain","size":10,"location":"u1/1-a.txt","created_at":"2024-01-01T00:00:00Z"}]`

	mock.ExpectQuery(`SELECT\s+nodes\s+FROM\s+trees`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"nodes"}).AddRow([]byte(doc)))

	nodes, err := repo.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "f1" || nodes[0].Size != 10 {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoad_NoDocumentMeansEmptyForest(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+nodes\s+FROM\s+trees`).
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	nodes, err := repo.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nodes == nil || len(nodes) != 0 {
		t.Fatalf("expected empty non-nil forest, got %+v", nodes)
	}
}

func TestLoad_CorruptDocument(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+nodes\s+FROM\s+trees`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"nodes"}).AddRow([]byte(`{oops`)))

	if _, err := repo.Load(context.Background(), "u1"); err == nil {
		t.Fatal("expected error for corrupt document")
	}
}

func TestSave_UpsertsWholeDocument(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	nodes := []*models.FileNode{{ID: "f1", Name: "a.txt", Type: "text/plain", Size: 10}}
	raw, _ := json.Marshal(nodes)

	q := `(?s)^\s*INSERT\s+INTO\s+trees\b.*ON\s+CONFLICT\s*\(owner_id\)\s*DO\s+UPDATE\s+SET\b.*`
	mock.ExpectExec(q).
		WithArgs("u1", raw).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), "u1", nodes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_NilTreeStoredAsEmptyArray(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+trees\b.*`
	mock.ExpectExec(q).
		WithArgs("u1", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), "u1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSave_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+trees\b.*`).
		WillReturnError(errors.New("db down"))

	err := repo.Save(context.Background(), "u1", []*models.FileNode{})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
