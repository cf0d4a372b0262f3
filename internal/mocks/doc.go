// Package mocks provides centralized mock implementations for testing.
//
// Each mock mirrors one interface with a function field per method; tests
// set only the fields they care about and the rest fall back to simple
// defaults. Keeping them here avoids re-declaring inline mocks in every
// test package.
package mocks
