package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/worktodo-api/internal/domain"
)

// TaskFilter describes an optional conjunctive predicate over tasks.
// Nil fields are excluded from the predicate entirely; an unset field is
// not the same as an empty-string match.
type TaskFilter struct {
	// Title and Description match by case-sensitive substring containment.
	Title       *string
	Description *string

	// Project, Organisation and Status match by equality.
	Project      *string
	Organisation *string
	Status       *domain.TaskStatus

	// CreatedAfter and CreatedBefore bound the creation timestamp with
	// strict inequalities.
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// IsZero reports whether no filter field is set. Callers rely on the
// zero-filter case taking the unfiltered list-all path.
func (f TaskFilter) IsZero() bool {
	return f.Title == nil &&
		f.Description == nil &&
		f.Project == nil &&
		f.Organisation == nil &&
		f.Status == nil &&
		f.CreatedAfter == nil &&
		f.CreatedBefore == nil
}

// TaskUpdate describes a partial update to a task. Nil fields are left
// untouched; they are never overwritten with empty values.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Project      *string
	Organisation *string
	Status       *domain.TaskStatus
}

// IsZero reports whether the update would change nothing.
func (u TaskUpdate) IsZero() bool {
	return u.Title == nil &&
		u.Description == nil &&
		u.Project == nil &&
		u.Organisation == nil &&
		u.Status == nil
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID with its file attachments
	// populated. Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves tasks matching the filter in insertion order, with
	// file attachments populated. A zero filter lists all tasks.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update applies a partial update to the task with the given ID and
	// returns the updated task. Fields absent from the update are
	// untouched. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete removes a task and, by cascade, its file rows. It returns the
	// storage paths of the removed files so the caller can clean up blobs.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
