package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avolkov/shareit/internal/common"
)

// FSStore keeps blobs on the local filesystem under baseDir, one
// subdirectory per owner. Locations are paths relative to baseDir so the
// base directory can move between restarts.
type FSStore struct {
	baseDir string
}

func NewFSStore(baseDir string) *FSStore {
	return &FSStore{baseDir: baseDir}
}

// sanitizeName strips path separators from a client-declared file name so
// it cannot escape the owner's directory.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	if name == "." || name == ".." || name == "" {
		name = "unnamed"
	}
	return name
}

func (s *FSStore) Write(ctx context.Context, ownerID, name string, content []byte) (string, error) {
	dir := filepath.Join(s.baseDir, ownerID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: creating owner dir: %v", common.ErrorStorageIO, err)
	}

	location := filepath.Join(ownerID, fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeName(name)))
	if err := os.WriteFile(filepath.Join(s.baseDir, location), content, 0o640); err != nil {
		return "", fmt.Errorf("%w: writing blob: %v", common.ErrorStorageIO, err)
	}

	return location, nil
}

func (s *FSStore) Read(ctx context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, location))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: reading blob: %v", common.ErrorStorageIO, err)
	}
	return data, nil
}

func (s *FSStore) Erase(ctx context.Context, location string) error {
	err := os.Remove(filepath.Join(s.baseDir, location))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: erasing blob: %v", common.ErrorStorageIO, err)
	}
	return nil
}
