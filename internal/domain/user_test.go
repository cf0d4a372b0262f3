package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("alice", "correct horse battery")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Username != "alice" {
		t.Errorf("Expected username %q, got %q", "alice", user.Username)
	}

	if user.Password != "correct horse battery" {
		t.Error("Expected plaintext password to be retained for the store to hash")
	}

	if user.HashedPassword != "" {
		t.Error("Expected no hash before the store hashes the password")
	}

	if user.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser("ab", "correct horse battery")
	if err != ErrInvalidUsername {
		t.Errorf("Expected error %v, got %v", ErrInvalidUsername, err)
	}

	_, err = NewUser(strings.Repeat("a", 33), "correct horse battery")
	if err != ErrInvalidUsername {
		t.Errorf("Expected error %v, got %v", ErrInvalidUsername, err)
	}

	_, err = NewUser("alice", "short")
	if err != ErrPasswordTooShort {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}

	_, err = NewUser("alice", strings.Repeat("x", 73))
	if err != ErrPasswordTooLong {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooLong, err)
	}

	_, err = NewUser("alice", "")
	if err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}

func TestUserValidateLoadedFromStore(t *testing.T) {
	// A user read back from the database has a hash and no plaintext.
	user := User{
		ID:             uuid.New(),
		Username:       "alice",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}

	if err := user.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}

	user.ID = uuid.Nil
	if err := user.Validate(); err != ErrEmptyUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}
}
