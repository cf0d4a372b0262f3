package domain

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Possible task status values. The set is closed; the database enforces it
// with a CHECK constraint and Validate enforces it at the boundary.
const (
	TaskStatusNew        TaskStatus = "new"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Field length bounds for tasks.
const (
	TaskTitleMinLen        = 3
	TaskTitleMaxLen        = 40
	TaskDescriptionMaxLen  = 2000
	TaskProjectMinLen      = 3
	TaskProjectMaxLen      = 63
	TaskOrganisationMinLen = 3
	TaskOrganisationMaxLen = 255
)

// Common validation errors for Task. The field-bound errors wrap
// ErrValidation so the API layer classifies them as client errors.
var (
	ErrEmptyTaskID         = errors.New("task ID cannot be empty")
	ErrInvalidTaskTitle    = fmt.Errorf("%w: task title must be between 3 and 40 characters", ErrValidation)
	ErrTaskDescriptionLong = fmt.Errorf("%w: task description must be at most 2000 characters", ErrValidation)
	ErrInvalidProject      = fmt.Errorf("%w: task project must be between 3 and 63 characters", ErrValidation)
	ErrInvalidOrganisation = fmt.Errorf("%w: task organisation must be between 3 and 255 characters", ErrValidation)
	ErrInvalidTaskStatus   = fmt.Errorf("%w: invalid task status", ErrValidation)
)

// Task represents a tracked work item. Files are the task's attachments,
// populated by the store when the task is read; they are never written
// through the task itself.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Project      string     `json:"project"`
	Organisation string     `json:"organisation"`
	Status       TaskStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Files        []*File    `json:"files"`
}

// NewTask creates a new Task with the given fields. An empty status
// defaults to TaskStatusNew. It generates a new UUID for the task ID and
// sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(title, description, project, organisation string, status TaskStatus) (*Task, error) {
	if status == "" {
		status = TaskStatusNew
	}

	task := &Task{
		ID:           uuid.New(),
		Title:        title,
		Description:  description,
		Project:      project,
		Organisation: organisation,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	// Bounds count characters, not bytes, matching the VARCHAR columns.
	if titleLen := utf8.RuneCountInString(t.Title); titleLen < TaskTitleMinLen || titleLen > TaskTitleMaxLen {
		return ErrInvalidTaskTitle
	}

	if utf8.RuneCountInString(t.Description) > TaskDescriptionMaxLen {
		return ErrTaskDescriptionLong
	}

	if projectLen := utf8.RuneCountInString(t.Project); projectLen < TaskProjectMinLen || projectLen > TaskProjectMaxLen {
		return ErrInvalidProject
	}

	if orgLen := utf8.RuneCountInString(t.Organisation); orgLen < TaskOrganisationMinLen || orgLen > TaskOrganisationMaxLen {
		return ErrInvalidOrganisation
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// UpdateStatus sets the task's status and bumps the UpdatedAt timestamp.
// Returns an error if the new status is not a known variant.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !IsValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}
