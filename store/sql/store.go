package sql

import (
	"github.com/uptrace/bun"
)

// Store implements qctl.Store over a *bun.DB.
//
// The provided *bun.DB must be properly configured and connected, and
// InitDB must have been called, before use.
type Store struct {
	db *bun.DB
}

// NewStore creates a new SQL-backed Store.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}
