// Package gravelkv is a single-file, log-structured key-value store.
//
// Every write appends a record to one file and an in-memory index maps each
// key to the offset of its latest record. Old records are never rewritten or
// reclaimed. On open the index is empty; Load rebuilds it by replaying the
// file from the start.
//
// Each record is laid out little-endian as
//
//	[4 bytes CRC-32/CKSUM of key+value][4 bytes KeyLen][4 bytes ValueLen][Key][Value]
//
// Deleting a key appends a record with an empty value, so Get on a deleted
// key reports it as found with an empty value.
//
// Example usage:
//
//	store, err := gravelkv.Open("/path/to/data.db", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Load(); err != nil {
//		log.Fatal(err)
//	}
//
//	err = store.Insert([]byte("key"), []byte("value"))
//	if err != nil {
//		log.Printf("Insert failed: %v", err)
//	}
//
//	value, found, err := store.Get([]byte("key"))
//	if err == nil && found {
//		fmt.Printf("Value: %s\n", value)
//	}
//
// A Store is not safe for concurrent use. Guard it with a mutex when sharing
// it between goroutines, and never open the same file from two stores.
package gravelkv

import (
	"github.com/MikhailWahib/gravelkv/internal/config"
	"github.com/MikhailWahib/gravelkv/internal/engine"
	"github.com/MikhailWahib/gravelkv/internal/record"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// RecoveryPolicy is an alias for config.RecoveryPolicy.
type RecoveryPolicy = config.RecoveryPolicy

// Recovery policies for Load. See config.RecoveryPolicy.
const (
	RecoverStrict       = config.RecoverStrict
	RecoverTruncateTail = config.RecoverTruncateTail
	RecoverSkipCorrupt  = config.RecoverSkipCorrupt
)

// DefaultConfig returns a Config struct populated with default values. Re-exported for user convenience.
var DefaultConfig = config.DefaultConfig

// ParseRecoveryPolicy is re-exported from config.
var ParseRecoveryPolicy = config.ParseRecoveryPolicy

var (
	// ErrCorrupt matches errors caused by a record failing its checksum.
	ErrCorrupt = record.ErrCorrupt
	// ErrTruncated matches errors caused by a record cut short by the end of the file.
	ErrTruncated = record.ErrTruncated
)

// Store is an open gravelkv file and its index.
type Store struct {
	engine *engine.Engine
}

// Open opens the file at path for reading and writing, creating it if needed.
// The returned Store has an empty index until Load is called.
//
// A nil cfg uses DefaultConfig.
func Open(path string, cfg *Config) (*Store, error) {
	e, err := engine.Open(path, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{engine: e}, nil
}

// Load rebuilds the index from the file. It must be called before relying
// on data written by earlier runs and may be called again at any time.
func (s *Store) Load() error {
	return s.engine.Load()
}

// Get retrieves the value for a given key.
// It returns found == false when the key was never written. Corruption is
// reported through err, never as a missing key.
func (s *Store) Get(key []byte) (value []byte, found bool, err error) {
	return s.engine.Get(key)
}

// Insert writes a key-value pair, superseding any earlier value.
func (s *Store) Insert(key, value []byte) error {
	return s.engine.Insert(key, value)
}

// Update behaves exactly like Insert.
func (s *Store) Update(key, value []byte) error {
	return s.engine.Update(key, value)
}

// Delete records an empty value for key.
func (s *Store) Delete(key []byte) error {
	return s.engine.Delete(key)
}

// Len returns the number of distinct keys in the index.
func (s *Store) Len() int {
	return s.engine.Len()
}

// Close syncs and closes the underlying file. The Store must not be used afterwards.
func (s *Store) Close() error {
	return s.engine.Close()
}
