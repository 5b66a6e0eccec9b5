package tools

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Source is one user supplied file. A Source without Open counts as missing.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource reads a file from disk
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// UploadSource reads a multipart upload
func UploadSource(fh *multipart.FileHeader) Source {
	if fh == nil {
		return Source{}
	}
	return Source{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// BytesSource serves an in-memory file
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Missing reports whether no file was supplied
func (s Source) Missing() bool {
	return s.Open == nil
}
