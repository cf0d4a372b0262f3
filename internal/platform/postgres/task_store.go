package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/platform/logger"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, project, organisation, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Project,
		task.Organisation,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID with its file attachments populated.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, description, project, organisation, status, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	if err := s.attachFiles(ctx, []*domain.Task{task}); err != nil {
		return nil, err
	}

	return task, nil
}

// List implements store.TaskStore.List
// A zero filter takes the unfiltered list-all path; otherwise the set
// fields are combined into a single conjunctive predicate.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, description, project, organisation, status, created_at, updated_at
		FROM tasks
	`
	var args []any
	if !filter.IsZero() {
		where, filterArgs := buildTaskFilter(filter)
		query += " WHERE " + where
		args = filterArgs
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if err := s.attachFiles(ctx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
// It applies a partial update: only the set fields of the update are
// written, everything else is untouched. The updated task is returned with
// attachments populated.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, id uuid.UUID, update store.TaskUpdate) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.IsZero() {
		// Nothing to change; still verify existence.
		return s.GetByID(ctx, id)
	}

	if update.Status != nil && !domain.IsValidTaskStatus(*update.Status) {
		return nil, domain.ErrInvalidTaskStatus
	}

	setClauses, args := buildTaskUpdate(update)
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE tasks SET %s, updated_at = now() WHERE id = $%d",
		strings.Join(setClauses, ", "),
		len(args),
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	if err := CheckRowsAffected(result, "task"); err != nil {
		return nil, store.ErrTaskNotFound
	}

	log.Debug("task updated", slog.String("task_id", id.String()))
	return s.GetByID(ctx, id)
}

// Delete implements store.TaskStore.Delete
// The files table cascades on task deletion; the storage paths of the
// removed file rows are collected first and returned so the caller can
// remove the blobs. Run inside a transaction for an exact snapshot.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT filepath FROM files WHERE task_id = $1`, id)
	if err != nil {
		log.Error("failed to collect file paths for task delete",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, MapError(err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	if err := CheckRowsAffected(result, "task"); err != nil {
		return nil, store.ErrTaskNotFound
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.Int("file_count", len(paths)))
	return paths, nil
}

// attachFiles populates the Files slice of each task with its file rows,
// in one query for the whole batch.
func (s *PostgresTaskStore) attachFiles(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	placeholders := make([]string, len(tasks))
	args := make([]any, len(tasks))
	for i, task := range tasks {
		task.Files = []*domain.File{}
		byID[task.ID] = task
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = task.ID
	}

	query := fmt.Sprintf(`
		SELECT id, filename, filepath, mimetype, size, task_id, created_at
		FROM files
		WHERE task_id IN (%s)
		ORDER BY created_at, id
	`, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return MapError(err)
		}
		if task, ok := byID[file.TaskID]; ok {
			task.Files = append(task.Files, file)
		}
	}
	return MapError(rows.Err())
}

// buildTaskFilter translates the set fields of the filter into an
// AND-combined WHERE clause with numbered placeholders. Unset fields are
// excluded entirely: absence is not an empty-string match.
func buildTaskFilter(filter store.TaskFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	// Free-text fields: case-sensitive substring containment.
	if filter.Title != nil {
		add("title LIKE $%d", "%"+escapeLike(*filter.Title)+"%")
	}
	if filter.Description != nil {
		add("description LIKE $%d", "%"+escapeLike(*filter.Description)+"%")
	}

	// Exact-match fields.
	if filter.Project != nil {
		add("project = $%d", *filter.Project)
	}
	if filter.Organisation != nil {
		add("organisation = $%d", *filter.Organisation)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}

	// Temporal bounds: strict inequalities on the creation timestamp.
	if filter.CreatedAfter != nil {
		add("created_at > $%d", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		add("created_at < $%d", *filter.CreatedBefore)
	}

	return strings.Join(conditions, " AND "), args
}

// buildTaskUpdate translates the set fields of a partial update into SET
// clauses with numbered placeholders.
func buildTaskUpdate(update store.TaskUpdate) ([]string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if update.Title != nil {
		add("title = $%d", *update.Title)
	}
	if update.Description != nil {
		add("description = $%d", *update.Description)
	}
	if update.Project != nil {
		add("project = $%d", *update.Project)
	}
	if update.Organisation != nil {
		add("organisation = $%d", *update.Organisation)
	}
	if update.Status != nil {
		add("status = $%d", *update.Status)
	}

	return clauses, args
}

// escapeLike escapes LIKE metacharacters so a containment search matches
// them literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a task row in the column order of the task SELECTs.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Project,
		&task.Organisation,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
