// Package engine composes the append log and the index into a key-value store.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/MikhailWahib/gravelkv/internal/applog"
	"github.com/MikhailWahib/gravelkv/internal/config"
	"github.com/MikhailWahib/gravelkv/internal/diskmanager"
	"github.com/MikhailWahib/gravelkv/internal/index"
	"github.com/MikhailWahib/gravelkv/internal/record"
)

// Engine owns one log file and the index over it.
// It does no locking; callers sharing an Engine must serialize access.
type Engine struct {
	path  string
	cfg   *config.Config
	dm    diskmanager.DiskManager
	log   *applog.Log
	index *index.Index
}

// Open opens or creates the log at path with an empty index.
// Load must be called before relying on data already in the file.
func Open(path string, cfg *config.Config) (*Engine, error) {
	return OpenWithDiskManager(diskmanager.NewDiskManager(), path, cfg)
}

// OpenWithDiskManager is Open with the file access supplied by dm.
func OpenWithDiskManager(dm diskmanager.DiskManager, path string, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := *cfg
	c.FillDefaults()

	fh, err := dm.Open(path, os.O_RDWR|os.O_CREATE, c.FileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", path, err)
	}

	return &Engine{
		path:  path,
		cfg:   &c,
		dm:    dm,
		log:   applog.New(fh, c.SyncWrites),
		index: index.New(),
	}, nil
}

// Load rebuilds the index by replaying the whole log. Calling it again
// re-derives the same mapping from the same bytes.
func (e *Engine) Load() error {
	report, err := e.index.Rebuild(e.log, e.cfg.Recovery)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", e.path, err)
	}

	for _, off := range report.Skipped {
		e.cfg.Logger.Printf("gravelkv: %s: skipped corrupt record at offset %d", e.path, off)
	}
	if report.TruncatedAt >= 0 {
		e.cfg.Logger.Printf("gravelkv: %s: dropped partial record, log truncated to %d bytes", e.path, report.TruncatedAt)
	}

	return nil
}

// Get returns the latest value stored for key. found is false only when the
// key has never been written; a deleted key is found with an empty value.
func (e *Engine) Get(key []byte) (value []byte, found bool, err error) {
	off, ok := e.index.Lookup(key)
	if !ok {
		return nil, false, nil
	}

	rec, err := e.log.ReadAt(off)
	if err != nil {
		return nil, false, err
	}
	if !bytes.Equal(rec.Key, key) {
		return nil, false, fmt.Errorf("%w: offset %d holds key %q, index expects %q", record.ErrCorrupt, off, rec.Key, key)
	}

	if rec.Value == nil {
		rec.Value = []byte{}
	}
	return rec.Value, true, nil
}

// Insert appends a record for key and points the index at it.
// If the append fails the index is left unchanged.
func (e *Engine) Insert(key, value []byte) error {
	off, err := e.log.Append(record.Encode(key, value))
	if err != nil {
		return err
	}

	e.index.Set(key, off)
	return nil
}

// Update is Insert; the key does not need to exist.
func (e *Engine) Update(key, value []byte) error {
	return e.Insert(key, value)
}

// Delete writes a tombstone, a record with an empty value, for key.
func (e *Engine) Delete(key []byte) error {
	return e.Insert(key, nil)
}

// Len returns the number of keys in the index, tombstones included.
func (e *Engine) Len() int {
	return e.index.Len()
}

// Offsets returns a copy of the key to offset index.
func (e *Engine) Offsets() map[string]int64 {
	return e.index.Offsets()
}

// Path returns the log file path.
func (e *Engine) Path() string {
	return e.path
}

// Close syncs and closes the log file. The handle is released even when the
// sync fails.
func (e *Engine) Close() error {
	syncErr := e.log.Sync()
	if syncErr != nil {
		syncErr = fmt.Errorf("failed to sync %s: %w", e.path, syncErr)
	}
	return errors.Join(syncErr, e.dm.Close(e.path))
}
