package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/mocks"
	"github.com/phrazzld/worktodo-api/internal/service/upload"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// newTaskRouter mounts the handler on a chi router so {id} path parameters
// resolve the way they do in production.
func newTaskRouter(h *TaskHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Patch("/tasks/{id}", h.UpdateTask)
	r.Patch("/tasks/{id}/status", h.UpdateTaskStatus)
	r.Delete("/tasks/{id}", h.DeleteTask)
	return r
}

func newTestTask(t *testing.T, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, "some description", "reporting", "acme", domain.TaskStatusNew)
	require.NoError(t, err)
	return task
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{
			name:       "valid task",
			payload:    `{"title":"Write report","description":"Q3 numbers","project":"reporting","organisation":"acme"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "explicit status",
			payload:    `{"title":"Write report","project":"reporting","organisation":"acme","status":"in_progress"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "title too short",
			payload:    `{"title":"ab","project":"reporting","organisation":"acme"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing project",
			payload:    `{"title":"Write report","organisation":"acme"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown status",
			payload:    `{"title":"Write report","project":"reporting","organisation":"acme","status":"archived"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed JSON",
			payload:    `{"title":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewTaskHandler(mocks.NewMockTaskStore(), nil, nil, nil)
			router := newTaskRouter(handler)

			req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp domain.Task
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.NotEqual(t, uuid.Nil, resp.ID)
				assert.Equal(t, "Write report", resp.Title)
			}
		})
	}
}

func TestCreateTaskDefaultsStatus(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	handler := NewTaskHandler(taskStore, nil, nil, nil)
	router := newTaskRouter(handler)

	payload := `{"title":"Write report","project":"reporting","organisation":"acme"}`
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(payload))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp domain.Task
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, domain.TaskStatusNew, resp.Status)
}

func TestCreateTaskMultibyteTitle(t *testing.T) {
	t.Parallel()

	// 30 two-byte characters: within the 40-character title bound even
	// though the byte length is 60.
	title := strings.Repeat("é", 30)

	handler := NewTaskHandler(mocks.NewMockTaskStore(), nil, nil, nil)
	router := newTaskRouter(handler)

	payload := fmt.Sprintf(`{"title":%q,"project":"reporting","organisation":"acme"}`, title)
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp domain.Task
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, title, resp.Title)
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	existing := newTestTask(t, "Write report")
	taskStore := mocks.NewMockTaskStore()
	taskStore.Tasks[existing.ID] = existing

	handler := NewTaskHandler(taskStore, nil, nil, nil)
	router := newTaskRouter(handler)

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks/"+existing.ID.String(), nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp domain.Task
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, existing.ID, resp.ID)
	})

	t.Run("unknown ID", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.NewString(), nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("malformed ID", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestListTasksFilterParsing(t *testing.T) {
	t.Parallel()

	var captured store.TaskFilter
	taskStore := mocks.NewMockTaskStore()
	taskStore.ListFn = func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
		captured = filter
		return nil, nil
	}

	handler := NewTaskHandler(taskStore, nil, nil, nil)
	router := newTaskRouter(handler)

	target := "/tasks?title=report&project=reporting&status=in_progress" +
		"&created_after=2026-01-01T00:00:00Z&created_before=2026-02-01T00:00:00Z"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	require.NotNil(t, captured.Title)
	assert.Equal(t, "report", *captured.Title)
	require.NotNil(t, captured.Project)
	assert.Equal(t, "reporting", *captured.Project)
	require.NotNil(t, captured.Status)
	assert.Equal(t, domain.TaskStatusInProgress, *captured.Status)
	require.NotNil(t, captured.CreatedAfter)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), captured.CreatedAfter.UTC())
	require.NotNil(t, captured.CreatedBefore)
	assert.Nil(t, captured.Description)
	assert.Nil(t, captured.Organisation)
}

func TestListTasksNoParamsIsZeroFilter(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	taskStore.ListFn = func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
		assert.True(t, filter.IsZero(), "no query params must produce the list-all filter")
		return nil, nil
	}

	handler := NewTaskHandler(taskStore, nil, nil, nil)
	router := newTaskRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestListTasksEmptyResultIsArray(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	taskStore.ListFn = func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
		return nil, nil
	}

	handler := NewTaskHandler(taskStore, nil, nil, nil)
	router := newTaskRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/tasks?title=nothing", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", strings.TrimSpace(recorder.Body.String()))
}

func TestListTasksLimit(t *testing.T) {
	t.Parallel()

	// 150 matching tasks; the cap is applied after retrieval.
	many := make([]*domain.Task, 150)
	for i := range many {
		many[i] = newTestTask(t, fmt.Sprintf("Task number %03d", i))
	}
	taskStore := mocks.NewMockTaskStore()
	taskStore.ListFn = func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
		return many, nil
	}

	handler := NewTaskHandler(taskStore, nil, nil, nil)
	router := newTaskRouter(handler)

	t.Run("default limit is 100", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp []*domain.Task
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Len(t, resp, DefaultTaskListLimit)
	})

	t.Run("explicit limit", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks?limit=5", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp []*domain.Task
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Len(t, resp, 5)
	})

	t.Run("limit above result count returns everything", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/tasks?limit=500", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp []*domain.Task
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Len(t, resp, 150)
	})
}

func TestListTasksBadParams(t *testing.T) {
	t.Parallel()

	handler := NewTaskHandler(mocks.NewMockTaskStore(), nil, nil, nil)
	router := newTaskRouter(handler)

	for _, target := range []string{
		"/tasks?status=archived",
		"/tasks?created_after=yesterday",
		"/tasks?created_before=01-02-2026",
		"/tasks?limit=0",
		"/tasks?limit=-3",
		"/tasks?limit=lots",
	} {
		target := target
		t.Run(target, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, target, nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("partial update leaves other fields untouched", func(t *testing.T) {
		t.Parallel()

		existing := newTestTask(t, "Write report")
		taskStore := mocks.NewMockTaskStore()
		taskStore.Tasks[existing.ID] = existing

		handler := NewTaskHandler(taskStore, nil, nil, nil)
		router := newTaskRouter(handler)

		payload := `{"title":"Rewrite report"}`
		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+existing.ID.String(), strings.NewReader(payload))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp domain.Task
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "Rewrite report", resp.Title)
		assert.Equal(t, "some description", resp.Description)
		assert.Equal(t, "reporting", resp.Project)
	})

	t.Run("unknown ID", func(t *testing.T) {
		t.Parallel()

		handler := NewTaskHandler(mocks.NewMockTaskStore(), nil, nil, nil)
		router := newTaskRouter(handler)

		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+uuid.NewString(), strings.NewReader(`{"title":"New title"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("invalid field value", func(t *testing.T) {
		t.Parallel()

		existing := newTestTask(t, "Write report")
		taskStore := mocks.NewMockTaskStore()
		taskStore.Tasks[existing.ID] = existing

		handler := NewTaskHandler(taskStore, nil, nil, nil)
		router := newTaskRouter(handler)

		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+existing.ID.String(), strings.NewReader(`{"title":"ab"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()

	t.Run("transitions status", func(t *testing.T) {
		t.Parallel()

		existing := newTestTask(t, "Write report")
		taskStore := mocks.NewMockTaskStore()
		taskStore.Tasks[existing.ID] = existing

		handler := NewTaskHandler(taskStore, nil, nil, nil)
		router := newTaskRouter(handler)

		req := httptest.NewRequest(
			http.MethodPatch,
			"/tasks/"+existing.ID.String()+"/status",
			strings.NewReader(`{"status":"done"}`),
		)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp domain.Task
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.TaskStatusDone, resp.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()

		existing := newTestTask(t, "Write report")
		taskStore := mocks.NewMockTaskStore()
		taskStore.Tasks[existing.ID] = existing

		handler := NewTaskHandler(taskStore, nil, nil, nil)
		router := newTaskRouter(handler)

		req := httptest.NewRequest(
			http.MethodPatch,
			"/tasks/"+existing.ID.String()+"/status",
			strings.NewReader(`{"status":"archived"}`),
		)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("removes task and its blobs", func(t *testing.T) {
		t.Parallel()

		uploads, err := upload.NewService(t.TempDir(), nil)
		require.NoError(t, err)

		_, blobPath, _, err := uploads.Save(context.Background(), "attachment.txt", strings.NewReader("x"))
		require.NoError(t, err)

		existing := newTestTask(t, "Write report")
		file, err := domain.NewFile(existing.ID, "attachment.txt", blobPath, "", 1)
		require.NoError(t, err)
		existing.Files = []*domain.File{file}

		taskStore := mocks.NewMockTaskStore()
		taskStore.Tasks[existing.ID] = existing

		handler := NewTaskHandler(taskStore, nil, uploads, nil)
		router := newTaskRouter(handler)

		req := httptest.NewRequest(http.MethodDelete, "/tasks/"+existing.ID.String(), nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Body.String())

		_, ok := taskStore.Tasks[existing.ID]
		assert.False(t, ok, "task should be gone from the store")

		_, err = os.Stat(blobPath)
		assert.True(t, os.IsNotExist(err), "blob should be unlinked after delete")
	})

	t.Run("unknown ID", func(t *testing.T) {
		t.Parallel()

		uploads, err := upload.NewService(t.TempDir(), nil)
		require.NoError(t, err)

		handler := NewTaskHandler(mocks.NewMockTaskStore(), nil, uploads, nil)
		router := newTaskRouter(handler)

		req := httptest.NewRequest(http.MethodDelete, "/tasks/"+uuid.NewString(), nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
