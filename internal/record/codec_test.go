package record_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/MikhailWahib/gravelkv/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_CheckValue(t *testing.T) {
	assert.Equal(t, uint32(0x765E7680), record.Checksum([]byte("123456789")))
	assert.Equal(t, uint32(0xFFFFFFFF), record.Checksum(nil))
}

func TestChecksum_KnownValues(t *testing.T) {
	assert.Equal(t, uint32(0x9CF0146E), record.Checksum([]byte("a1")))
	assert.Equal(t, uint32(0x004F8B68), record.Checksum(bytes.Repeat([]byte("hello world"), 3)))
}

func TestEncode_Layout(t *testing.T) {
	buf := record.Encode([]byte("a"), []byte("1"))

	expected := []byte{
		0x6e, 0x14, 0xf0, 0x9c, // checksum of "a1"
		0x01, 0x00, 0x00, 0x00, // key length
		0x01, 0x00, 0x00, 0x00, // value length
		'a', '1',
	}
	assert.Equal(t, expected, buf)
}

func TestEncode_HeaderFields(t *testing.T) {
	key := []byte("mykey")
	value := []byte("myvalue")

	buf := record.Encode(key, value)
	require.Len(t, buf, record.HeaderSize+len(key)+len(value))

	keyLen := binary.LittleEndian.Uint32(buf[4:8])
	valLen := binary.LittleEndian.Uint32(buf[8:12])

	assert.Equal(t, record.Checksum(append(append([]byte{}, key...), value...)), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(len(key)), keyLen)
	assert.Equal(t, uint32(len(value)), valLen)
	assert.Equal(t, key, buf[12:12+keyLen])
	assert.Equal(t, value, buf[12+keyLen:])
}

func TestEncode_EmptyRecordIsHeaderOnly(t *testing.T) {
	buf := record.Encode(nil, nil)
	assert.Len(t, buf, record.HeaderSize)
	assert.Equal(t, int64(12), record.Size(0, 0))

	rec, err := record.Decode(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Empty(t, rec.Key)
	assert.Empty(t, rec.Value)
	assert.True(t, rec.IsTombstone())
}

func TestDecode_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		key   []byte
		value []byte
	}{
		{"text", []byte("mykey"), []byte("myvalue")},
		{"empty value", []byte("gone"), nil},
		{"empty key", nil, []byte("anonymous")},
		{"binary", []byte{0x00, 0xff, 0x10}, []byte{0xde, 0xad, 0xbe, 0xef, 0x00}},
		{"large", bytes.Repeat([]byte("k"), 1024), bytes.Repeat([]byte{0xab}, 200*1024)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := record.Encode(tc.key, tc.value)

			rec, err := record.Decode(bytes.NewReader(buf))
			require.NoError(t, err)

			assert.Equal(t, len(tc.key), len(rec.Key))
			assert.True(t, bytes.Equal(tc.key, rec.Key), "key mismatch")
			assert.True(t, bytes.Equal(tc.value, rec.Value), "value mismatch")
			assert.Equal(t, int64(len(buf)), rec.Size())
		})
	}
}

func TestDecode_OneByteReads(t *testing.T) {
	buf := record.Encode([]byte("key"), []byte("value"))

	rec, err := record.Decode(iotest.OneByteReader(bytes.NewReader(buf)))
	require.NoError(t, err)
	assert.Equal(t, []byte("key"), rec.Key)
	assert.Equal(t, []byte("value"), rec.Value)
}

func TestDecode_Sequential(t *testing.T) {
	var log bytes.Buffer
	log.Write(record.Encode([]byte("k1"), []byte("v1")))
	log.Write(record.Encode([]byte("k2"), []byte("v2")))

	r := bytes.NewReader(log.Bytes())

	first, err := record.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("k1"), first.Key)

	second, err := record.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("k2"), second.Key)

	_, err = record.Decode(r)
	assert.Equal(t, io.EOF, err)
}

func TestDecode_CleanEOF(t *testing.T) {
	_, err := record.Decode(bytes.NewReader(nil))
	assert.Equal(t, io.EOF, err, "empty input must report a clean end of log")
}

func TestDecode_Truncated(t *testing.T) {
	buf := record.Encode([]byte("key"), []byte("value"))

	// Every proper prefix except the empty one is a partial write.
	for n := 1; n < len(buf); n++ {
		_, err := record.Decode(bytes.NewReader(buf[:n]))
		require.Error(t, err, "prefix of %d bytes", n)
		assert.ErrorIs(t, err, record.ErrTruncated, "prefix of %d bytes", n)
		assert.NotErrorIs(t, err, record.ErrCorrupt, "prefix of %d bytes", n)
	}
}

func TestDecode_HugeLengthOnShortInput(t *testing.T) {
	buf := record.Encode([]byte("key"), []byte("value"))
	binary.LittleEndian.PutUint32(buf[8:12], 0xFFFFFFFF)

	_, err := record.Decode(bytes.NewReader(buf))
	assert.ErrorIs(t, err, record.ErrTruncated)
}

func TestDecode_BitFlipIsCorruption(t *testing.T) {
	key := []byte("key")
	value := []byte("value")
	buf := record.Encode(key, value)

	for i := record.HeaderSize; i < len(buf); i++ {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte{}, buf...)
			tampered[i] ^= 1 << bit

			rec, err := record.Decode(bytes.NewReader(tampered))
			require.Error(t, err, "byte %d bit %d", i, bit)
			assert.ErrorIs(t, err, record.ErrCorrupt, "byte %d bit %d", i, bit)
			assert.Nil(t, rec.Key)
			assert.Nil(t, rec.Value)
		}
	}
}

func TestDecode_ChecksumFieldFlipIsCorruption(t *testing.T) {
	buf := record.Encode([]byte("key"), []byte("value"))
	buf[0] ^= 0x01

	_, err := record.Decode(bytes.NewReader(buf))
	assert.ErrorIs(t, err, record.ErrCorrupt)
}

func TestDecode_ReadError(t *testing.T) {
	boom := errors.New("boom")

	_, err := record.Decode(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, record.ErrTruncated)
}
