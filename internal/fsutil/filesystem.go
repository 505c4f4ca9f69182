// Package fsutil lets the config, hot pixel list and plot code run against
// the real disk or an in-memory tree.
package fsutil

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing/fstest"
)

// FileSystem is the set of file operations the extraction tools need.
type FileSystem interface {
	// Create truncates or creates name for writing.
	Create(name string) (io.WriteCloser, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	// Exists reports whether name is a file or directory.
	Exists(name string) bool
}

// OSFileSystem is the FileSystem backed by the os package.
type OSFileSystem struct{}

func (OSFileSystem) Create(name string) (io.WriteCloser, error) { return os.Create(name) }
func (OSFileSystem) ReadFile(name string) ([]byte, error)       { return os.ReadFile(name) }
func (OSFileSystem) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// MemoryFileSystem keeps files in an fstest.MapFS. Parent directories of a
// file exist implicitly. Paths are cleaned and a leading separator is
// ignored, so "/a/b" and "a/./b" name the same file.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files fstest.MapFS
}

// NewMemoryFileSystem returns an empty tree.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{files: fstest.MapFS{}}
}

func memKey(name string) string {
	key := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(name)), "/")
	if key == "" {
		return "."
	}
	return key
}

// Create returns a writer whose contents replace the file on Close.
func (m *MemoryFileSystem) Create(name string) (io.WriteCloser, error) {
	key := memKey(name)
	m.mu.Lock()
	m.files[key] = &fstest.MapFile{Mode: 0644}
	m.mu.Unlock()
	return &memWriter{m: m, key: key}, nil
}

func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, err := fs.ReadFile(m.files, memKey(name))
	if err != nil {
		return nil, err
	}
	return bytes.Clone(data), nil
}

func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[memKey(name)] = &fstest.MapFile{Data: bytes.Clone(data), Mode: perm}
	return nil
}

func (m *MemoryFileSystem) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fs.Stat(m.files, memKey(name))
}

// MkdirAll records path as a directory; its parents follow from it.
func (m *MemoryFileSystem) MkdirAll(path string, perm os.FileMode) error {
	key := memKey(path)
	if key == "." {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[key]; ok && !f.Mode.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	m.files[key] = &fstest.MapFile{Mode: fs.ModeDir | perm}
	return nil
}

func (m *MemoryFileSystem) Exists(name string) bool {
	_, err := m.Stat(name)
	return err == nil
}

type memWriter struct {
	m   *MemoryFileSystem
	key string
	buf bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	mode := os.FileMode(0644)
	if f, ok := w.m.files[w.key]; ok {
		mode = f.Mode
	}
	w.m.files[w.key] = &fstest.MapFile{Data: bytes.Clone(w.buf.Bytes()), Mode: mode}
	return nil
}
