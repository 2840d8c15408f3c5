package upload

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/foldlab/foldpipe/internal/pathutil"
)

// File is a user selection. Its content is opened only when the selection
// passes the extension check.
type File struct {
	Name string
	Size int64 // -1 when unknown
	open func() (io.ReadCloser, error)
}

// LocalFile selects the file at path. A leading "~" is expanded and
// symlinks are resolved; the displayed name stays the one the user typed.
func LocalFile(path string) *File {
	name := filepath.Base(path)
	if resolved, err := pathutil.ResolveAbsolutePath(path); err == nil {
		path = resolved
	}
	size := int64(-1)
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return &File{
		Name: name,
		Size: size,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// MemoryFile selects in-memory content under name.
func MemoryFile(name string, data []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Open returns the file content.
func (f *File) Open() (io.ReadCloser, error) {
	return f.open()
}
