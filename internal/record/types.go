package record

// Record is a single key-value pair as stored in the log.
// A record with an empty value is a tombstone.
type Record struct {
	Key   []byte
	Value []byte
}

// Size returns the number of bytes the record occupies on disk.
func (r Record) Size() int64 {
	return Size(len(r.Key), len(r.Value))
}

// IsTombstone reports whether the record marks its key as deleted.
func (r Record) IsTombstone() bool {
	return len(r.Value) == 0
}

// Size returns the encoded size of a record with the given key and value lengths.
func Size(keyLen, valLen int) int64 {
	return HeaderSize + int64(keyLen) + int64(valLen)
}
