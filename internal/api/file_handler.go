package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/phrazzld/worktodo-api/internal/api/shared"
	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/platform/logger"
	"github.com/phrazzld/worktodo-api/internal/redact"
	"github.com/phrazzld/worktodo-api/internal/service/upload"
	"github.com/phrazzld/worktodo-api/internal/store"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory
// before spilling to temp files.
const maxUploadMemory = 32 << 20 // 32 MiB

// FileHandler handles file attachment HTTP requests.
type FileHandler struct {
	taskStore store.TaskStore
	fileStore store.FileStore
	uploads   *upload.Service
	logger    *slog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(
	taskStore store.TaskStore,
	fileStore store.FileStore,
	uploads *upload.Service,
	log *slog.Logger,
) *FileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FileHandler{
		taskStore: taskStore,
		fileStore: fileStore,
		uploads:   uploads,
		logger:    log.With(slog.String("component", "file_handler")),
	}
}

// UploadFile handles POST /api/tasks/{id}/files requests. The blob is
// written to disk before the metadata row is inserted: an insert failure
// can orphan a blob, but a metadata row never points at bytes that were
// not fully persisted.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	// Resolve the task first so a missing task is a 404, not a failed
	// foreign key after the blob already hit disk.
	if _, err := h.taskStore.GetByID(ctx, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() {
		if closeErr := part.Close(); closeErr != nil {
			log.Warn("failed to close upload part", slog.String("error", closeErr.Error()))
		}
	}()

	filename, path, size, err := h.uploads.Save(ctx, header.Filename, part)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mimetype := header.Header.Get("Content-Type")

	file, err := domain.NewFile(taskID, filename, path, mimetype, size)
	if err != nil {
		h.uploads.Remove(ctx, path)
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.fileStore.Create(ctx, file); err != nil {
		// Best-effort: the blob without a row is harmless, but don't
		// hoard it if the unlink succeeds.
		h.uploads.Remove(ctx, path)
		HandleAPIError(w, r, err, "Failed to save file")
		return
	}

	log.Debug("file attached",
		slog.String("task_id", taskID.String()),
		slog.String("file_id", file.ID.String()),
		slog.Int64("size", size))

	shared.RespondWithJSON(w, r, http.StatusCreated, file)
}

// DownloadFile handles GET /api/files/{id} requests, streaming the stored
// blob with its recorded mimetype. A row whose blob has gone missing is a
// 404; the response never mentions the path.
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	file, err := h.fileStore.GetByID(ctx, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	blob, err := h.uploads.Open(file.Filepath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("file record has no blob on disk",
				slog.String("file_id", id.String()))
			shared.RespondWithError(w, r, http.StatusNotFound, "File not found")
			return
		}
		log.Error("failed to open stored file", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer func() {
		if closeErr := blob.Close(); closeErr != nil {
			log.Warn("failed to close stored file", slog.String("error", closeErr.Error()))
		}
	}()

	w.Header().Set("Content-Type", file.Mimetype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob); err != nil {
		// Headers are gone; all we can do is log the broken stream.
		log.Warn("failed to stream file", slog.String("error", err.Error()))
	}
}
