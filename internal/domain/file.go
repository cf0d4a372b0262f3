package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMimetype is recorded when an upload declares no content type.
const DefaultMimetype = "application/octet-stream"

// File-specific validation errors. The field-bound errors wrap
// ErrValidation so the API layer classifies them as client errors.
var (
	ErrEmptyFileID      = errors.New("file ID cannot be empty")
	ErrEmptyFileTaskID  = errors.New("file task ID cannot be empty")
	ErrEmptyFilename    = fmt.Errorf("%w: filename cannot be empty", ErrValidation)
	ErrEmptyFilepath    = errors.New("filepath cannot be empty")
	ErrNegativeFileSize = fmt.Errorf("%w: file size cannot be negative", ErrValidation)
)

// File represents a binary attachment owned by exactly one task.
// Filepath is the server-local storage location and is never exposed in
// API responses.
type File struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Filepath  string    `json:"-"`
	Mimetype  string    `json:"mimetype"`
	Size      int64     `json:"size"`
	TaskID    uuid.UUID `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFile creates a new File metadata record for a stored blob.
// An empty mimetype defaults to DefaultMimetype. It generates a new UUID
// for the file ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewFile(taskID uuid.UUID, filename, filepath, mimetype string, size int64) (*File, error) {
	if mimetype == "" {
		mimetype = DefaultMimetype
	}

	file := &File{
		ID:        uuid.New(),
		Filename:  filename,
		Filepath:  filepath,
		Mimetype:  mimetype,
		Size:      size,
		TaskID:    taskID,
		CreatedAt: time.Now().UTC(),
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}

	return file, nil
}

// Validate checks if the File has valid data.
// Returns an error if any field fails validation.
func (f *File) Validate() error {
	if f.ID == uuid.Nil {
		return ErrEmptyFileID
	}

	if f.TaskID == uuid.Nil {
		return ErrEmptyFileTaskID
	}

	if f.Filename == "" {
		return ErrEmptyFilename
	}

	if f.Filepath == "" {
		return ErrEmptyFilepath
	}

	if f.Size < 0 {
		return ErrNegativeFileSize
	}

	return nil
}
