package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(ErrFileNotFound))
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrTaskNotFound)))

	assert.False(t, IsNotFoundError(ErrUsernameExists))
	assert.False(t, IsNotFoundError(errors.New("something else")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrUsernameExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrUsernameExists)))

	assert.False(t, IsDuplicateError(ErrTaskNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("message includes entity and operation", func(t *testing.T) {
		t.Parallel()

		err := NewStoreError("task", "create", "insert failed", nil)

		assert.Equal(t, "create operation on task failed: insert failed", err.Error())
	})

	t.Run("wrapped error appears in message and unwraps", func(t *testing.T) {
		t.Parallel()

		err := NewStoreError("file", "delete", "row missing", ErrFileNotFound)

		assert.Contains(t, err.Error(), "delete operation on file failed")
		assert.Contains(t, err.Error(), ErrFileNotFound.Error())
		assert.True(t, errors.Is(err, ErrFileNotFound))
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("errors.As recovers the typed error", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("outer: %w", NewStoreError("user", "update", "conflict", ErrUsernameExists))

		var storeErr *StoreError
		assert.True(t, errors.As(wrapped, &storeErr))
		assert.Equal(t, "user", storeErr.Entity)
		assert.Equal(t, "update", storeErr.Operation)
	})
}
