// Package domain defines the core business entities of the task tracker:
// tasks, their file attachments, and users. Entities are plain data structs
// with constructor-time validation; relations are resolved by the store
// layer through foreign keys, never through embedded back-pointers.
package domain
