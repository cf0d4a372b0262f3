// Package store defines the persistence interfaces for tasks, files, and
// users, plus the shared error taxonomy and transaction helpers their
// implementations use. Concrete implementations live in
// internal/platform/postgres.
package store
