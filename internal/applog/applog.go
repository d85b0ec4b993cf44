// Package applog implements the append-only record log backing a store.
package applog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/MikhailWahib/gravelkv/internal/diskmanager"
	"github.com/MikhailWahib/gravelkv/internal/record"
)

// Log owns the file handle of a single append-only log.
// It is not safe for concurrent use.
type Log struct {
	fh         diskmanager.FileHandle
	syncWrites bool
}

// New wraps an open file handle. The handle must be readable and writable
// and must not be in append mode, since appends use WriteAt.
func New(fh diskmanager.FileHandle, syncWrites bool) *Log {
	return &Log{
		fh:         fh,
		syncWrites: syncWrites,
	}
}

// Append writes an encoded record at the current end of the file and returns
// the offset it starts at. The end is taken from the file itself on every call
// rather than from a cached length. The write is synced only when the log was
// created with syncWrites.
//
// If the write or sync fails, the file is cut back to offset so that no
// partial record sits in front of later appends.
func (l *Log) Append(buf []byte) (int64, error) {
	offset, err := l.Size()
	if err != nil {
		return 0, err
	}

	n, err := l.fh.WriteAt(buf, offset)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return 0, l.rollback(offset, fmt.Errorf("failed to append record at offset %d: %w", offset, err))
	}

	if l.syncWrites {
		if err := l.fh.Sync(); err != nil {
			return 0, l.rollback(offset, fmt.Errorf("failed to sync log: %w", err))
		}
	}

	return offset, nil
}

func (l *Log) rollback(offset int64, cause error) error {
	if err := l.fh.Truncate(offset); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to roll back log to %d bytes: %w", offset, err))
	}
	return cause
}

// ReadAt decodes the record starting at offset.
func (l *Log) ReadAt(offset int64) (record.Record, error) {
	r := bufio.NewReader(io.NewSectionReader(l.fh, offset, math.MaxInt64-offset))

	rec, err := record.Decode(r)
	if err == io.EOF {
		return record.Record{}, fmt.Errorf("no record at offset %d: %w", offset, io.ErrUnexpectedEOF)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to read record at offset %d: %w", offset, err)
	}

	return rec, nil
}

// Scan returns a scanner positioned at the start of the log.
// Each call starts a fresh pass.
func (l *Log) Scan() *Scanner {
	return newScanner(l.fh)
}

// Size returns the current length of the log in bytes.
func (l *Log) Size() (int64, error) {
	info, err := l.fh.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat log: %w", err)
	}
	return info.Size(), nil
}

// Truncate cuts the log back to size bytes and syncs the result.
func (l *Log) Truncate(size int64) error {
	if err := l.fh.Truncate(size); err != nil {
		return fmt.Errorf("failed to truncate log to %d bytes: %w", size, err)
	}
	return l.Sync()
}

// Sync ensures all data is persisted to disk
func (l *Log) Sync() error {
	return l.fh.Sync()
}
