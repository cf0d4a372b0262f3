package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/worktodo-api/internal/api/shared"
	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/platform/logger"
	"github.com/phrazzld/worktodo-api/internal/service/upload"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// DefaultTaskListLimit caps how many tasks a single list request returns
// when the client does not ask for a limit.
const DefaultTaskListLimit = 100

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskStore store.TaskStore
	db        *sql.DB
	uploads   *upload.Service
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	taskStore store.TaskStore,
	db *sql.DB,
	uploads *upload.Service,
	log *slog.Logger,
) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		taskStore: taskStore,
		db:        db,
		uploads:   uploads,
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, SanitizeValidationError(err))
		return
	}

	task, err := domain.NewTask(
		req.Title,
		req.Description,
		req.Project,
		req.Organisation,
		domain.TaskStatus(req.Status),
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ListTasks handles GET /api/tasks requests. Query parameters narrow the
// result conjunctively; with no parameters every task is returned. The
// limit is applied to the matched set, not pushed into the query.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, limit, err := parseTaskListQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.taskStore.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	if len(tasks) > limit {
		tasks = tasks[:limit]
	}

	// An empty match serializes as [], not null.
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// UpdateTask handles PATCH /api/tasks/{id} requests. Absent fields are
// left untouched.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, SanitizeValidationError(err))
		return
	}

	update := store.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Project:      req.Project,
		Organisation: req.Organisation,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		update.Status = &status
	}

	task, err := h.taskStore.Update(r.Context(), id, update)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/{id}/status requests.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTaskStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, SanitizeValidationError(err))
		return
	}

	status := domain.TaskStatus(req.Status)
	task, err := h.taskStore.Update(r.Context(), id, store.TaskUpdate{Status: &status})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id} requests. The task row and its
// file rows go in one transaction; blobs on disk are removed only after the
// commit, best-effort, so a failed unlink never resurrects the task.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var removedPaths []string
	err = h.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		paths, err := h.taskStore.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		removedPaths = paths
		return nil
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if len(removedPaths) > 0 {
		h.uploads.Remove(ctx, removedPaths...)
		log.Debug("removed task attachments",
			slog.String("task_id", id.String()),
			slog.Int("count", len(removedPaths)))
	}

	w.WriteHeader(http.StatusNoContent)
}

// runTx executes fn inside a database transaction. Stores without a
// database handle (mocks) run fn directly with a nil transaction; their
// WithTx is a no-op.
func (h *TaskHandler) runTx(ctx context.Context, fn store.TxFn) error {
	if h.db == nil {
		return fn(ctx, nil)
	}
	return store.RunInTransaction(ctx, h.db, fn)
}

// parseTaskListQuery builds a TaskFilter and result limit from list query
// parameters. Unknown parameters are ignored; malformed known parameters
// are validation errors.
func parseTaskListQuery(r *http.Request) (store.TaskFilter, int, error) {
	var filter store.TaskFilter
	q := r.URL.Query()

	if v := q.Get("title"); v != "" {
		filter.Title = &v
	}
	if v := q.Get("description"); v != "" {
		filter.Description = &v
	}
	if v := q.Get("project"); v != "" {
		filter.Project = &v
	}
	if v := q.Get("organisation"); v != "" {
		filter.Organisation = &v
	}
	if v := q.Get("status"); v != "" {
		status := domain.TaskStatus(v)
		if !domain.IsValidTaskStatus(status) {
			return filter, 0, domain.NewValidationError("status", "must be one of new, in_progress, done", domain.ErrValidation)
		}
		filter.Status = &status
	}
	if v := q.Get("created_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, 0, domain.NewValidationError("created_after", "must be an RFC 3339 timestamp", domain.ErrValidation)
		}
		filter.CreatedAfter = &t
	}
	if v := q.Get("created_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, 0, domain.NewValidationError("created_before", "must be an RFC 3339 timestamp", domain.ErrValidation)
		}
		filter.CreatedBefore = &t
	}

	limit := DefaultTaskListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, 0, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
		}
		limit = n
	}

	return filter, limit, nil
}
