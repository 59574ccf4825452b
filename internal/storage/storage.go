// Package storage persists the ledger snapshot to a JSON state file so
// open positions and the balance survive a restart. Writes are atomic:
// temp file, sync, rename.
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"forex_pilot/internal/models"
)

// SchemaVersion is bumped when the state file layout changes; Load
// migrates older files forward.
const SchemaVersion = "1.0"

// Store reads and writes one state file.
type Store struct {
	path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the ledger state from disk. A missing file is not an
// error: it returns an empty versioned state, which the broker treats
// as a fresh account.
func (s *Store) Load() (models.LedgerState, error) {
	var state models.LedgerState

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		log.Printf("State file %s missing, starting fresh", s.path)
		return models.LedgerState{Version: SchemaVersion}, nil
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		return state, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(b, &state); err != nil {
		return state, fmt.Errorf("parse state file: %w", err)
	}

	if migrate(&state) {
		log.Printf("State migrated to version %s, saving", state.Version)
		if err := s.Save(state); err != nil {
			log.Printf("Warning: could not persist migrated state: %v", err)
		}
	}
	return state, nil
}

// migrate upgrades older state files in place. Returns true when the
// state changed and should be re-saved.
func migrate(state *models.LedgerState) bool {
	if state.Version == SchemaVersion {
		return false
	}
	// Pre-versioned files carried no version field at all; positions
	// without a status were open by construction.
	for i := range state.Positions {
		if state.Positions[i].Status == "" {
			state.Positions[i].Status = models.StatusOpen
		}
	}
	state.Version = SchemaVersion
	return true
}

// Save writes the state atomically: the temp file lands in the same
// directory so the final rename cannot cross filesystems.
func (s *Store) Save(state models.LedgerState) error {
	state.Version = SchemaVersion
	state.LastSync = time.Now().Format(time.RFC3339)

	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	// Sync before rename so a power cut cannot leave a truncated file
	// behind the swap.
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
