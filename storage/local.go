package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/yeremiapane/honda-dealer/services"
)

// LocalStore keeps uploads under a root directory. References are paths relative to root.
type LocalStore struct {
	root string
}

var _ services.FileStore = (*LocalStore)(nil)

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save writes the file under dir with a random name and the extension of its sniffed type.
func (s *LocalStore) Save(ctx context.Context, dir string, file services.UploadFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(s.root, filepath.Clean("/" + dir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + mimetype.Detect(file.Data).Extension()
	if err := os.WriteFile(filepath.Join(target, name), file.Data, 0o644); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(strings.TrimPrefix(filepath.Clean("/"+dir), "/"), name)), nil
}

func (s *LocalStore) Remove(ref string) error {
	err := os.Remove(s.Path(ref))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path resolves ref to a file path inside root.
func (s *LocalStore) Path(ref string) string {
	return filepath.Join(s.root, filepath.Clean("/"+ref))
}
