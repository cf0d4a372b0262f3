package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// MockFileStore implements store.FileStore for testing.
type MockFileStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, file *domain.File) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.File, error)
	ListByTaskIDFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.File, error)
	DeleteFn       func(ctx context.Context, id uuid.UUID) error

	// Data for the default implementation
	Files map[uuid.UUID]*domain.File
}

// NewMockFileStore creates a new mock store with initialized defaults.
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{
		Files: make(map[uuid.UUID]*domain.File),
	}
}

// Create implements the FileStore interface.
func (m *MockFileStore) Create(ctx context.Context, file *domain.File) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, file)
	}

	m.Files[file.ID] = file
	return nil
}

// GetByID implements the FileStore interface.
func (m *MockFileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	file, exists := m.Files[id]
	if !exists {
		return nil, store.ErrFileNotFound
	}
	return file, nil
}

// ListByTaskID implements the FileStore interface.
func (m *MockFileStore) ListByTaskID(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.File, error) {
	if m.ListByTaskIDFn != nil {
		return m.ListByTaskIDFn(ctx, taskID)
	}

	files := make([]*domain.File, 0)
	for _, file := range m.Files {
		if file.TaskID == taskID {
			files = append(files, file)
		}
	}
	return files, nil
}

// Delete implements the FileStore interface.
func (m *MockFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Files[id]; !exists {
		return store.ErrFileNotFound
	}
	delete(m.Files, id)
	return nil
}

// WithTx implements the FileStore interface. The mock has no transaction
// state, so it returns itself.
func (m *MockFileStore) WithTx(tx *sql.Tx) store.FileStore {
	return m
}
