package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/worktodo-api/internal/domain"
)

// FileStore defines the interface for file metadata persistence.
// Blob contents live on the filesystem; the store tracks metadata only.
type FileStore interface {
	// Create saves a new file record. The owning task must exist; a
	// foreign key violation surfaces as ErrInvalidEntity.
	Create(ctx context.Context, file *domain.File) error

	// GetByID retrieves a file record by its unique ID.
	// Returns ErrFileNotFound if the file does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error)

	// ListByTaskID retrieves all file records attached to the given task,
	// in insertion order.
	ListByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.File, error)

	// Delete removes a file record by its ID.
	// Returns ErrFileNotFound if the file does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a FileStore bound to the provided transaction.
	WithTx(tx *sql.Tx) FileStore
}
