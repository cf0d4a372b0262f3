package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/platform/logger"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// PostgresFileStore implements the store.FileStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFileStore creates a new PostgreSQL implementation of the
// FileStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresFileStore(db store.DBTX, logger *slog.Logger) *PostgresFileStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFileStore{
		db:     db,
		logger: logger.With(slog.String("component", "file_store")),
	}
}

// Ensure PostgresFileStore implements store.FileStore interface
var _ store.FileStore = (*PostgresFileStore)(nil)

// WithTx implements store.FileStore.WithTx
func (s *PostgresFileStore) WithTx(tx *sql.Tx) store.FileStore {
	return &PostgresFileStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.FileStore.Create
// It saves a new file record, handling domain validation.
// A missing owning task surfaces as store.ErrInvalidEntity (foreign key
// violation).
func (s *PostgresFileStore) Create(ctx context.Context, file *domain.File) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := file.Validate(); err != nil {
		log.Warn("file validation failed during create",
			slog.String("error", err.Error()),
			slog.String("file_id", file.ID.String()))
		return err
	}

	query := `
		INSERT INTO files (id, filename, filepath, mimetype, size, task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		file.ID,
		file.Filename,
		file.Filepath,
		file.Mimetype,
		file.Size,
		file.TaskID,
		file.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during file creation",
				slog.String("file_id", file.ID.String()),
				slog.String("task_id", file.TaskID.String()))
			return fmt.Errorf("%w: task with ID %s not found",
				store.ErrInvalidEntity, file.TaskID)
		}

		log.Error("failed to create file record",
			slog.String("error", err.Error()),
			slog.String("file_id", file.ID.String()),
			slog.String("task_id", file.TaskID.String()))
		return MapError(err)
	}

	log.Info("file record created",
		slog.String("file_id", file.ID.String()),
		slog.String("task_id", file.TaskID.String()),
		slog.Int64("size", file.Size))
	return nil
}

// GetByID implements store.FileStore.GetByID
// Returns store.ErrFileNotFound if the file does not exist.
func (s *PostgresFileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, filename, filepath, mimetype, size, task_id, created_at
		FROM files
		WHERE id = $1
	`
	file, err := scanFile(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFileNotFound
		}
		log.Error("failed to get file",
			slog.String("error", err.Error()),
			slog.String("file_id", id.String()))
		return nil, MapError(err)
	}

	return file, nil
}

// ListByTaskID implements store.FileStore.ListByTaskID
func (s *PostgresFileStore) ListByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.File, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, filename, filepath, mimetype, size, task_id, created_at
		FROM files
		WHERE task_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list files",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	files := []*domain.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, MapError(err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return files, nil
}

// Delete implements store.FileStore.Delete
// Returns store.ErrFileNotFound if the file does not exist.
func (s *PostgresFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete file",
			slog.String("error", err.Error()),
			slog.String("file_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "file"); err != nil {
		return store.ErrFileNotFound
	}

	log.Info("file record deleted", slog.String("file_id", id.String()))
	return nil
}

// scanFile scans a file row in the column order of the file SELECTs.
func scanFile(row rowScanner) (*domain.File, error) {
	var file domain.File
	err := row.Scan(
		&file.ID,
		&file.Filename,
		&file.Filepath,
		&file.Mimetype,
		&file.Size,
		&file.TaskID,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
