// Package index maps keys to the offset of their latest record in the log.
package index

import (
	"errors"
	"fmt"

	"github.com/MikhailWahib/gravelkv/internal/applog"
	"github.com/MikhailWahib/gravelkv/internal/config"
	"github.com/MikhailWahib/gravelkv/internal/record"
)

// Replayer is the part of the log a rebuild needs.
type Replayer interface {
	Scan() *applog.Scanner
	Truncate(size int64) error
}

// Report describes what a rebuild did beyond indexing clean records.
type Report struct {
	// Records is the number of records indexed.
	Records int
	// Skipped lists the offsets of corrupt records that were stepped over.
	Skipped []int64
	// TruncatedAt is the size the log was cut back to, or -1 if it was not cut.
	TruncatedAt int64
}

// Index is an in-memory key to offset mapping. It is not safe for concurrent use.
type Index struct {
	offsets map[string]int64
}

// New returns an empty Index.
func New() *Index {
	return &Index{offsets: make(map[string]int64)}
}

// Lookup returns the offset of the latest record for key.
func (i *Index) Lookup(key []byte) (int64, bool) {
	off, ok := i.offsets[string(key)]
	return off, ok
}

// Set points key at offset, replacing any earlier entry.
func (i *Index) Set(key []byte, offset int64) {
	i.offsets[string(key)] = offset
}

// Len returns the number of keys in the index.
func (i *Index) Len() int {
	return len(i.offsets)
}

// Offsets returns a copy of the mapping.
func (i *Index) Offsets() map[string]int64 {
	out := make(map[string]int64, len(i.offsets))
	for k, v := range i.offsets {
		out[k] = v
	}
	return out
}

// Rebuild replays the log from the start and replaces the mapping with one
// entry per key pointing at its last record. Later records overwrite earlier
// ones, which is how updates and deletes take effect.
//
// The new mapping is built aside and installed only when the replay succeeds,
// so a failed rebuild leaves the index as it was.
func (i *Index) Rebuild(log Replayer, policy config.RecoveryPolicy) (Report, error) {
	report := Report{TruncatedAt: -1}
	offsets := make(map[string]int64)

	s := log.Scan()
scan:
	for {
		for s.Next() {
			e := s.Entry()
			offsets[string(e.Record.Key)] = e.Offset
			report.Records++
		}

		err := s.Err()
		if err == nil {
			break
		}

		var scanErr *applog.ScanError
		if !errors.As(err, &scanErr) {
			return report, err
		}

		switch {
		case policy == config.RecoverSkipCorrupt && errors.Is(err, record.ErrCorrupt):
			report.Skipped = append(report.Skipped, scanErr.Offset)
			s.Skip()

		case policy != config.RecoverStrict && errors.Is(err, record.ErrTruncated):
			// Input ended inside this record, so nothing after it can be framed.
			if err := log.Truncate(scanErr.Offset); err != nil {
				return report, fmt.Errorf("failed to drop truncated tail: %w", err)
			}
			report.TruncatedAt = scanErr.Offset
			break scan

		default:
			return report, fmt.Errorf("failed to rebuild index: %w", err)
		}
	}

	i.offsets = offsets
	return report, nil
}
