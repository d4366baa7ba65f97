// Package stash persists per-actor instruction tapes. Actors
// accumulate a program one instruction byte at a time: append one,
// pop the last one back off, or hand the whole tape to the VM.
package stash

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/ribbon/vm"
)

// ErrEmptyTape indicates a pop on an actor with no instructions.
var ErrEmptyTape = errors.New("stash: tape is empty")

// ErrNotInstruction indicates a push of a byte outside the instruction
// alphabet.
var ErrNotInstruction = errors.New("stash: not an instruction byte")

// Store is the SQLite-backed instruction accumulator.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the stash database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS tapes (
		actor TEXT PRIMARY KEY,
		tape BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Push appends one instruction byte to the actor's tape and returns
// the new tape length. The byte must be one of the eight instruction
// bytes; anything else was filtered upstream or is a caller bug.
func (s *Store) Push(actor string, op byte) (int, error) {
	if !vm.Opcode(op).Valid() {
		return 0, fmt.Errorf("%w: %#x", ErrNotInstruction, op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tape, err := s.tape(actor)
	if err != nil {
		return 0, err
	}
	tape = append(tape, op)
	if err := s.save(actor, tape); err != nil {
		return 0, err
	}
	return len(tape), nil
}

// Pop removes and returns the most recently pushed instruction, along
// with the remaining tape length.
func (s *Store) Pop(actor string) (byte, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tape, err := s.tape(actor)
	if err != nil {
		return 0, 0, err
	}
	if len(tape) == 0 {
		return 0, 0, ErrEmptyTape
	}
	op := tape[len(tape)-1]
	tape = tape[:len(tape)-1]
	if err := s.save(actor, tape); err != nil {
		return 0, 0, err
	}
	return op, len(tape), nil
}

// Tape returns a copy of the actor's current instruction sequence.
// An unknown actor has an empty tape.
func (s *Store) Tape(actor string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tape(actor)
}

// Clear removes the actor's tape entirely.
func (s *Store) Clear(actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM tapes WHERE actor = ?", actor); err != nil {
		return fmt.Errorf("clearing tape: %w", err)
	}
	return nil
}

// tape loads the actor's tape. Caller holds the mutex.
func (s *Store) tape(actor string) ([]byte, error) {
	var tape []byte
	err := s.db.QueryRow("SELECT tape FROM tapes WHERE actor = ?", actor).Scan(&tape)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying tape: %w", err)
	}
	return tape, nil
}

// save writes the actor's tape back. Caller holds the mutex.
func (s *Store) save(actor string, tape []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO tapes (actor, tape) VALUES (?, ?)",
		actor, tape,
	)
	if err != nil {
		return fmt.Errorf("saving tape: %w", err)
	}
	return nil
}
