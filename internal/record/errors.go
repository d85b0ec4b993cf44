package record

import "errors"

var (
	// ErrCorrupt is returned when a record's payload does not match its checksum.
	ErrCorrupt = errors.New("record corrupt")

	// ErrTruncated is returned when input ends inside a record's header or payload.
	ErrTruncated = errors.New("record truncated")
)
