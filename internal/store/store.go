// internal/store/store.go
//
// Persistence for game sessions between HTTP requests.
// Two backends: an in-process map (memory.go) and SQLite (sqlite.go).

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/voiceguess/internal/session"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a snapshot.
	Save(ctx context.Context, snap session.Snapshot) error

	// Get retrieves a snapshot by session ID, or ErrNotFound.
	Get(ctx context.Context, id string) (session.Snapshot, error)

	// Delete removes a session, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Prune removes every session last updated before the cutoff and
	// reports how many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	Close() error
}

// Drivers accepted by New.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// New opens the Store named by driver. dsn is only used by sqlite.
func New(driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return OpenSQLite(dsn)
	}
	return nil, fmt.Errorf("store: unknown driver %q", driver)
}
