package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/avolkov/shareit/internal/common"
	"github.com/avolkov/shareit/internal/dbx"
	"github.com/avolkov/shareit/internal/logging"
	"github.com/avolkov/shareit/internal/server/models"
	linksrepo "github.com/avolkov/shareit/internal/server/repositories/links"
	treesrepo "github.com/avolkov/shareit/internal/server/repositories/trees"
	usersrepo "github.com/avolkov/shareit/internal/server/repositories/users"
)

// --- shared in-memory fakes ---

type fakeUsersRepo struct {
	users     map[string]*models.User
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, common.ErrorDuplicateAccount
		}
	}
	if u.ID == "" {
		u.ID = "user-" + u.Email
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeTreesRepo mimics the whole-document semantics of the real
// repository: Load and Save both deep-copy, so callers never share node
// pointers with the stored document.
type fakeTreesRepo struct {
	docs    map[string][]*models.FileNode
	saveErr error
}

func newFakeTreesRepo() *fakeTreesRepo {
	return &fakeTreesRepo{docs: map[string][]*models.FileNode{}}
}

func cloneNodes(nodes []*models.FileNode) []*models.FileNode {
	out := make([]*models.FileNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func (f *fakeTreesRepo) Load(ctx context.Context, ownerID string) ([]*models.FileNode, error) {
	return cloneNodes(f.docs[ownerID]), nil
}

func (f *fakeTreesRepo) Save(ctx context.Context, ownerID string, nodes []*models.FileNode) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.docs[ownerID] = cloneNodes(nodes)
	return nil
}

type fakeLinksRepo struct {
	links map[string]*models.ShareLink
}

func newFakeLinksRepo() *fakeLinksRepo {
	return &fakeLinksRepo{links: map[string]*models.ShareLink{}}
}

func (f *fakeLinksRepo) Create(ctx context.Context, link *models.ShareLink) error {
	cp := *link
	cp.File = link.File.Clone()
	f.links[link.Token] = &cp
	return nil
}

func (f *fakeLinksRepo) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	l, ok := f.links[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return l, nil
}

func (f *fakeLinksRepo) TokenExists(ctx context.Context, token string) (bool, error) {
	_, ok := f.links[token]
	return ok, nil
}

func (f *fakeLinksRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error) {
	var out []*models.ShareLink
	for _, l := range f.links {
		if l.Owner.ID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinksRepo) DeleteByTokenAndOwner(ctx context.Context, token, ownerID string) error {
	if l, ok := f.links[token]; ok && l.Owner.ID == ownerID {
		delete(f.links, token)
	}
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTreesRepo
	l *fakeLinksRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		t: newFakeTreesRepo(),
		l: newFakeLinksRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository             { return m.u }
func (m *fakeRepoManager) Trees(db dbx.DBTX) treesrepo.Repository             { return m.t }
func (m *fakeRepoManager) Links(db dbx.DBTX) linksrepo.Repository             { return m.l }

// fakeBlobStore is an in-memory blob.Store.
type fakeBlobStore struct {
	blobs    map[string][]byte
	writeErr error
	seq      int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (f *fakeBlobStore) Write(ctx context.Context, ownerID, name string, content []byte) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.seq++
	loc := fmt.Sprintf("%s/%d-%s", ownerID, f.seq, name)
	cp := make([]byte, len(content))
	copy(cp, content)
	f.blobs[loc] = cp
	return loc, nil
}

func (f *fakeBlobStore) Read(ctx context.Context, location string) ([]byte, error) {
	b, ok := f.blobs[location]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (f *fakeBlobStore) Erase(ctx context.Context, location string) error {
	delete(f.blobs, location)
	return nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func addUser(t *testing.T, rm *fakeRepoManager, id, name, email, key string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: name, Email: email, EncryptionKey: []byte(key)}
	rm.u.users[id] = u
	return u
}
