package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxPrealloc caps the payload buffer allocated up front. Larger payloads
// grow as bytes arrive so a damaged length field cannot force a huge allocation.
const maxPrealloc = 64 * 1024

// Encode serializes a key-value pair into its on-disk form.
// Format (little-endian): [4 bytes Checksum][4 bytes KeyLen][4 bytes ValueLen][Key][Value]
// The checksum covers Key followed by Value.
func Encode(key, value []byte) []byte {
	keyLen := len(key)
	valLen := len(value)

	buf := make([]byte, HeaderSize+keyLen+valLen)

	copy(buf[HeaderSize:], key)
	copy(buf[HeaderSize+keyLen:], value)

	binary.LittleEndian.PutUint32(buf[0:ChecksumSize], Checksum(buf[HeaderSize:]))
	binary.LittleEndian.PutUint32(buf[ChecksumSize:ChecksumSize+LengthSize], uint32(keyLen))
	binary.LittleEndian.PutUint32(buf[ChecksumSize+LengthSize:HeaderSize], uint32(valLen))

	return buf
}

// Decode reads exactly one record from r.
//
// It returns io.EOF, unwrapped, when r is exhausted before the first header
// byte, which is the clean end of a log. Input that ends inside the header or
// payload yields an error wrapping ErrTruncated, and a checksum mismatch
// yields an error wrapping ErrCorrupt. In both cases no record is returned.
func Decode(r io.Reader) (Record, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return Record{}, fmt.Errorf("%w: short header", ErrTruncated)
		}
		return Record{}, fmt.Errorf("failed to read record header: %w", err)
	}

	saved := binary.LittleEndian.Uint32(header[0:ChecksumSize])
	keyLen := binary.LittleEndian.Uint32(header[ChecksumSize : ChecksumSize+LengthSize])
	valLen := binary.LittleEndian.Uint32(header[ChecksumSize+LengthSize : HeaderSize])
	dataLen := int64(keyLen) + int64(valLen)

	var data bytes.Buffer
	data.Grow(int(min(dataLen, maxPrealloc)))

	n, err := io.CopyN(&data, r, dataLen)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, fmt.Errorf("%w: payload has %d of %d bytes", ErrTruncated, n, dataLen)
		}
		return Record{}, fmt.Errorf("failed to read record payload: %w", err)
	}

	payload := data.Bytes()
	if sum := Checksum(payload); sum != saved {
		return Record{}, fmt.Errorf("%w: checksum %08x != %08x", ErrCorrupt, sum, saved)
	}

	return Record{
		Key:   payload[:keyLen:keyLen],
		Value: payload[keyLen:],
	}, nil
}
