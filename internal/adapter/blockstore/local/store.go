// Package local implements ports.BlockStore on the local filesystem, the
// "local disk" blob-store driver named alongside object storage in
// spec.md §1.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// Store writes one file per block under baseDir/<org>/<block_id>. There
// is no pack example of a disk-backed blob store to ground this on, so
// it stays on os/path-filepath rather than reaching for a third-party
// library that wouldn't add anything over the standard library here.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) path(org domain.OrganizationID, id domain.BlockID) string {
	return filepath.Join(s.baseDir, string(org), id.String())
}

func (s *Store) Create(ctx context.Context, org domain.OrganizationID, id domain.BlockID, data []byte) error {
	dir := filepath.Join(s.baseDir, string(org))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("blockstore: create org directory: %w", err)
	}
	path := s.path(org, id)
	if _, err := os.Stat(path); err == nil {
		return domain.ErrAlreadyExists
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("blockstore: write block: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, org domain.OrganizationID, id domain.BlockID) ([]byte, error) {
	data, err := os.ReadFile(s.path(org, id))
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blockstore: read block: %w", err)
	}
	return data, nil
}
