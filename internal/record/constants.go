// Package record implements the on-disk record format shared by the log and its readers.
package record

// ChecksumSize is the size in bytes of the payload checksum
const ChecksumSize = 4

// LengthSize is the size in bytes used to store length prefixes
const LengthSize = 4

// HeaderSize is the total size of record metadata (checksum + key length + value length)
const HeaderSize = ChecksumSize + (2 * LengthSize) // 12 bytes
