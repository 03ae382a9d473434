package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
)

// FileWeightStore persists the weight table as a single JSON document on
// disk. Writes go through a temp file plus rename so a crashed flush never
// leaves a torn table behind.
type FileWeightStore struct {
	path string
}

func NewFileWeightStore(path string) *FileWeightStore {
	return &FileWeightStore{path: path}
}

func (s *FileWeightStore) Load(_ context.Context) (*models.WeightTable, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read weight table: %w", err)
	}
	var table models.WeightTable
	if err := json.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("parse weight table: %w", err)
	}
	return &table, nil
}

func (s *FileWeightStore) Save(_ context.Context, table *models.WeightTable) error {
	table.SavedAt = time.Now()
	b, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("encode weight table: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create weight dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write weight table: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit weight table: %w", err)
	}
	return nil
}

func (s *FileWeightStore) Close() error { return nil }

var _ domrepo.WeightTableRepository = (*FileWeightStore)(nil)
