package localmedia

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

// Store keeps uploaded media on local disk under a single root directory and
// maps stored names to public URLs served by the static route.
type Store struct {
	root    string
	baseURL string
	log     *logger.Logger
}

func NewStore(root, baseURL string, baseLog *logger.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media root directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     baseLog.With("component", "localmedia"),
	}, nil
}

func (s *Store) Root() string { return s.root }

// Save streams r to disk under a generated name that keeps the original
// extension. Returns the stored name and its public URL.
func (s *Store) Save(originalFilename string, r io.Reader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	stored := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.root, stored))
	if err != nil {
		return "", "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", "", fmt.Errorf("write media file: %w", err)
	}
	return stored, s.URL(stored), nil
}

// SaveBytes is Save for an in-memory payload, used by the renderer.
func (s *Store) SaveBytes(originalFilename string, data []byte) (string, string, error) {
	return s.Save(originalFilename, bytes.NewReader(data))
}

func (s *Store) Path(storedFilename string) string {
	return filepath.Join(s.root, filepath.Base(storedFilename))
}

func (s *Store) URL(storedFilename string) string {
	return s.baseURL + "/" + storedFilename
}

func (s *Store) Remove(storedFilename string) error {
	err := os.Remove(s.Path(storedFilename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
