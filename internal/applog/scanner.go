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

// Entry is a record together with the offset it was read from.
type Entry struct {
	Offset int64
	Record record.Record
}

// ScanError reports the record a scan stopped at.
type ScanError struct {
	// Offset is where the failing record starts.
	Offset int64
	// End is how far the scan had read when it failed. For a checksum
	// mismatch this is the start of the following record.
	End int64
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan stopped at offset %d: %v", e.Offset, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Scanner walks the log from offset 0 one record at a time, reading lazily.
//
//	s := log.Scan()
//	for s.Next() {
//		e := s.Entry()
//		...
//	}
//	if err := s.Err(); err != nil { ... }
type Scanner struct {
	r     *countingReader
	entry Entry
	err   error
	done  bool
}

func newScanner(fh diskmanager.FileHandle) *Scanner {
	section := io.NewSectionReader(fh, 0, math.MaxInt64)
	return &Scanner{
		r: &countingReader{r: bufio.NewReader(section)},
	}
}

// Next decodes the next record. It returns false at the clean end of the log
// or when a record fails to decode, in which case Err reports why.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	start := s.r.n
	rec, err := record.Decode(s.r)
	if err == io.EOF {
		s.done = true
		return false
	}
	if err != nil {
		s.err = &ScanError{Offset: start, End: s.r.n, Err: err}
		return false
	}

	s.entry = Entry{Offset: start, Record: rec}
	return true
}

// Entry returns the record produced by the last successful call to Next.
func (s *Scanner) Entry() Entry {
	return s.entry
}

// Err returns the *ScanError that stopped the scan, or nil if it reached the end cleanly.
func (s *Scanner) Err() error {
	return s.err
}

// Skip clears a checksum failure so that Next resumes with the following
// record. It reports false, leaving the error in place, for any other failure:
// a truncated record has no trustworthy end to resume from.
func (s *Scanner) Skip() bool {
	if !errors.Is(s.err, record.ErrCorrupt) {
		return false
	}
	s.err = nil
	return true
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
