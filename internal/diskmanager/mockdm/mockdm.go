// Package mockdm provides an in-memory implementation of the disk manager for testing,
// with hooks to inject write and sync failures.
package mockdm

import (
	"io"
	"os"
	"time"

	"github.com/MikhailWahib/gravelkv/internal/diskmanager"
)

// MockFile implements diskmanager.FileHandle for testing purposes
type MockFile struct {
	data []byte
	name string

	// WriteErr, when set, is returned by WriteAt after ShortWrite bytes are written.
	WriteErr error
	// ShortWrite is the number of bytes WriteAt lands before failing with WriteErr.
	ShortWrite int
	// SyncErr, when set, is returned by Sync.
	SyncErr error
	// TruncateErr, when set, is returned by Truncate and the file is left as is.
	TruncateErr error

	Syncs  int
	Closed bool
}

// WriteAt writes len(b) bytes to the file starting at byte offset off
func (m *MockFile) WriteAt(b []byte, off int64) (int, error) {
	if m.WriteErr != nil {
		b = b[:min(m.ShortWrite, len(b))]
	}
	// Extend the slice if needed
	requiredLen := int(off) + len(b)
	if requiredLen > len(m.data) {
		newData := make([]byte, requiredLen)
		copy(newData, m.data)
		m.data = newData
	}
	n := copy(m.data[off:], b)
	if m.WriteErr != nil {
		return n, m.WriteErr
	}
	return n, nil
}

// ReadAt reads len(b) bytes from the file starting at byte offset off
func (m *MockFile) ReadAt(b []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// Truncate changes the size of the mock file
func (m *MockFile) Truncate(size int64) error {
	if m.TruncateErr != nil {
		return m.TruncateErr
	}
	if size < int64(len(m.data)) {
		m.data = m.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.data)
	m.data = grown
	return nil
}

// Close closes the mock file
func (m *MockFile) Close() error {
	m.Closed = true
	return nil
}

// Sync simulates syncing file contents to disk
func (m *MockFile) Sync() error {
	m.Syncs++
	return m.SyncErr
}

// Stat returns file information
func (m *MockFile) Stat() (os.FileInfo, error) {
	return &testFileInfo{size: int64(len(m.data)), name: m.name}, nil
}

// Bytes returns the current file contents.
func (m *MockFile) Bytes() []byte {
	return m.data
}

type testFileInfo struct {
	size int64
	name string
}

func (m *testFileInfo) Name() string       { return m.name }
func (m *testFileInfo) Size() int64        { return m.size }
func (m *testFileInfo) Mode() os.FileMode  { return 0644 }
func (m *testFileInfo) ModTime() time.Time { return time.Now() }
func (m *testFileInfo) IsDir() bool        { return false }
func (m *testFileInfo) Sys() any           { return nil }

// MockDiskManager implements diskmanager.DiskManager interface for testing
type MockDiskManager struct {
	files map[string]*MockFile
}

// NewMockDiskManager creates a new MockDiskManager instance
func NewMockDiskManager() *MockDiskManager {
	return &MockDiskManager{
		files: make(map[string]*MockFile),
	}
}

// Open creates or opens a mock file
func (dm *MockDiskManager) Open(path string, _ int, _ os.FileMode) (diskmanager.FileHandle, error) {
	return dm.File(path), nil
}

// File returns the mock file at path, creating it if needed.
func (dm *MockDiskManager) File(path string) *MockFile {
	if file, exists := dm.files[path]; exists {
		return file
	}

	file := &MockFile{
		data: []byte{},
		name: path,
	}
	dm.files[path] = file
	return file
}

// Close closes a mock file
func (dm *MockDiskManager) Close(path string) error {
	if file, exists := dm.files[path]; exists {
		return file.Close()
	}
	return nil
}
