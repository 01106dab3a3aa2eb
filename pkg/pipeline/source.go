package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// ErrFileRead marks every failure to turn a path into source text.
var ErrFileRead = errors.New("file read failed")

var (
	errNotRegular = errors.New("not a regular file")
	errTooLarge   = errors.New("file too large")
	errEncoding   = errors.New("invalid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFailure classifies a FileReadError.
type ReadFailure int

// Read failure kinds.
const (
	ReadIO ReadFailure = iota
	ReadNotFound
	ReadPermission
	ReadNotRegular
	ReadTooLarge
	ReadEncoding
)

// FileReadError aborts a report: no analyzer runs when the file cannot be read.
// It matches ErrFileRead and the underlying cause with errors.Is.
type FileReadError struct {
	Path  string
	Kind  ReadFailure
	Size  uint64
	Limit uint64
	Err   error
}

// Error returns the message shown to the user.
func (e *FileReadError) Error() string {
	switch e.Kind {
	case ReadNotFound:
		return fmt.Sprintf("cannot open %s: file not found", e.Path)
	case ReadPermission:
		return fmt.Sprintf("cannot open %s: permission denied", e.Path)
	case ReadNotRegular:
		return fmt.Sprintf("cannot open %s: not a regular file", e.Path)
	case ReadTooLarge:
		return fmt.Sprintf("cannot open %s: file is %s, limit is %s",
			e.Path, humanize.Bytes(e.Size), humanize.Bytes(e.Limit))
	case ReadEncoding:
		return fmt.Sprintf("cannot open %s: not valid UTF-8 text", e.Path)
	default:
		return fmt.Sprintf("cannot open %s: read failed", e.Path)
	}
}

// Unwrap exposes both ErrFileRead and the cause.
func (e *FileReadError) Unwrap() []error {
	return []error{ErrFileRead, e.Err}
}

// ReadSource reads path as UTF-8 text. A leading byte order mark is dropped.
// maxSize of 0 disables the size limit.
func ReadSource(path string, maxSize uint64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", classify(path, err)
	}

	if !info.Mode().IsRegular() {
		return "", &FileReadError{Path: path, Kind: ReadNotRegular, Err: errNotRegular}
	}

	size := uint64(max(info.Size(), 0))
	if maxSize > 0 && size > maxSize {
		return "", &FileReadError{Path: path, Kind: ReadTooLarge, Size: size, Limit: maxSize, Err: errTooLarge}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", classify(path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", &FileReadError{Path: path, Kind: ReadEncoding, Err: errEncoding}
	}

	return string(data), nil
}

func classify(path string, err error) *FileReadError {
	kind := ReadIO

	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ReadNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ReadPermission
	}

	return &FileReadError{Path: path, Kind: kind, Err: err}
}
