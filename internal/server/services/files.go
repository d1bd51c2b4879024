// Package services contains the storage engine's business logic: file
// upload/download/removal over the owner's tree, capability link
// management, and account creation. Persistence, blob storage, ciphering
// and token minting are injected at construction; nothing reaches for
// ambient globals.
package services

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/shareit/internal/common"
	"github.com/avolkov/shareit/internal/cryptox"
	"github.com/avolkov/shareit/internal/logging"
	"github.com/avolkov/shareit/internal/server/blob"
	"github.com/avolkov/shareit/internal/server/models"
	"github.com/avolkov/shareit/internal/server/repositories/repomanager"
	"github.com/avolkov/shareit/internal/server/tree"
)

// DownloadResult carries decrypted content plus the metadata the caller
// needs to serve it.
type DownloadResult struct {
	Content  []byte
	MimeType string
	Name     string
}

// FileService implements upload, list, download and delete over the
// owner's encrypted file tree.
//
// Tree mutations are read-modify-write over the owner's whole document, so
// each one runs under a per-owner lock; without it a concurrent mutation
// interleaved between load and save would be silently lost.
type FileService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	blobs  blob.Store
	cipher cryptox.Cipher
	logger logging.Logger

	ownerLocks sync.Map // ownerID -> *sync.Mutex
}

func NewFileService(db *sql.DB, repos repomanager.RepositoryManager, blobs blob.Store, cipher cryptox.Cipher, logger logging.Logger) *FileService {
	return &FileService{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		cipher: cipher,
		logger: logger.With("module", "files"),
	}
}

func (s *FileService) ownerLock(ownerID string) *sync.Mutex {
	lock, _ := s.ownerLocks.LoadOrStore(ownerID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *FileService) owner(ctx context.Context, ownerID string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, ownerID)
	if err != nil {
		// an unknown acting identity is an authorization failure,
		// not a lookup miss
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Upload encrypts content with the owner's key, persists the ciphertext,
// and records a new file node at the top level of the owner's tree. A blob
// write failure aborts this request only. If the subsequent tree save
// fails the already-written blob is orphaned; that leak is logged and
// accepted rather than corrupting the tree.
func (s *FileService) Upload(ctx context.Context, ownerID, name, mimeType string, content []byte) (*models.FileNode, error) {
	user, err := s.owner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ciphertext, err := s.cipher.Encrypt(content, user.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encrypting content: %w", err)
	}

	location, err := s.blobs.Write(ctx, ownerID, name, ciphertext)
	if err != nil {
		return nil, err
	}

	node := &models.FileNode{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      cmp.Or(mimeType, "application/octet-stream"),
		Size:      int64(len(content)),
		Location:  location,
		CreatedAt: time.Now(),
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	treeRepo := s.repos.Trees(s.db)
	nodes, err := treeRepo.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	nodes = append(nodes, node)
	if err := treeRepo.Save(ctx, ownerID, nodes); err != nil {
		s.logger.Warn(ctx, "tree save failed after blob write, blob orphaned",
			"owner", ownerID, "location", location, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "file uploaded", "owner", ownerID, "file", node.ID, "size", node.Size)
	return node, nil
}

// CreateFolder adds an empty folder node, at the top level when parentID
// is empty or inside the named parent folder.
func (s *FileService) CreateFolder(ctx context.Context, ownerID, name, parentID string) (*models.FileNode, error) {
	if _, err := s.owner(ctx, ownerID); err != nil {
		return nil, err
	}

	node := &models.FileNode{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      models.FolderType,
		CreatedAt: time.Now(),
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	treeRepo := s.repos.Trees(s.db)
	nodes, err := treeRepo.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if parentID == "" {
		nodes = append(nodes, node)
	} else {
		parent := findFolder(nodes, parentID)
		if parent == nil {
			return nil, common.ErrorNotFound
		}
		parent.Children = append(parent.Children, node)
	}

	if err := treeRepo.Save(ctx, ownerID, nodes); err != nil {
		return nil, err
	}
	return node, nil
}

// findFolder locates a folder node by id; unlike tree.FindByID it matches
// folders, since files cannot contain children.
func findFolder(nodes []*models.FileNode, id string) *models.FileNode {
	for _, node := range nodes {
		if !node.IsFolder() {
			continue
		}
		if node.ID == id {
			return node
		}
		if found := findFolder(node.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// List returns the owner's whole tree in insertion order.
func (s *FileService) List(ctx context.Context, ownerID string) ([]*models.FileNode, error) {
	if _, err := s.owner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repos.Trees(s.db).Load(ctx, ownerID)
}

// Download resolves fileID in the owner's tree, reads the ciphertext and
// returns the decrypted content.
func (s *FileService) Download(ctx context.Context, ownerID, fileID string) (*DownloadResult, error) {
	user, err := s.owner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	nodes, err := s.repos.Trees(s.db).Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	node := tree.FindByID(nodes, fileID)
	if node == nil {
		return nil, common.ErrorNotFound
	}

	return s.readAndDecrypt(ctx, node, user.EncryptionKey)
}

// DownloadShared serves a file through its capability token. No identity
// is required: holding the token is the authorization. The content is
// decrypted with the link owner's key, looked up through the account
// record. The snapshot may point at bytes erased since the share; the blob
// read then fails with NotFound (the stale-link condition).
func (s *FileService) DownloadShared(ctx context.Context, shareToken string) (*DownloadResult, error) {
	link, err := s.repos.Links(s.db).GetByToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, link.Owner.ID)
	if err != nil {
		return nil, err
	}

	return s.readAndDecrypt(ctx, link.File, user.EncryptionKey)
}

func (s *FileService) readAndDecrypt(ctx context.Context, node *models.FileNode, key []byte) (*DownloadResult, error) {
	ciphertext, err := s.blobs.Read(ctx, node.Location)
	if err != nil {
		return nil, err
	}

	content, err := s.cipher.Decrypt(ciphertext, key)
	if err != nil {
		return nil, fmt.Errorf("decrypting content: %w", err)
	}

	return &DownloadResult{Content: content, MimeType: node.Type, Name: node.Name}, nil
}

// Delete removes the node from the owner's tree and erases its backing
// bytes best-effort. An id not present in the caller's tree is treated as
// not owned by the caller.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID string) error {
	if _, err := s.owner(ctx, ownerID); err != nil {
		return err
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	treeRepo := s.repos.Trees(s.db)
	nodes, err := treeRepo.Load(ctx, ownerID)
	if err != nil {
		return err
	}

	if tree.FindByID(nodes, fileID) == nil {
		return common.ErrorUnauthorized
	}

	nodes = tree.RemoveByID(ctx, nodes, fileID, s.blobs, s.logger)

	if err := treeRepo.Save(ctx, ownerID, nodes); err != nil {
		return err
	}

	s.logger.Info(ctx, "file deleted", "owner", ownerID, "file", fileID)
	return nil
}
