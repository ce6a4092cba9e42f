package porelog

import (
	"bytes"
	"errors"
	"io"
	"os"
	"reflect"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadErrorKind classifies why a document could not be loaded.
type LoadErrorKind int

const (
	// MissingFile means no file handle was supplied.
	MissingFile LoadErrorKind = iota + 1
	// InvalidJSON means the file text is not syntactically valid JSON.
	InvalidJSON
	// ReadFailed means the file content could not be read.
	ReadFailed
)

func (k LoadErrorKind) String() string {
	switch k {
	case MissingFile:
		return "MissingFile"
	case InvalidJSON:
		return "InvalidJson"
	case ReadFailed:
		return "ReadFailed"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is matching on LoadError kinds.
var (
	ErrMissingFile = errors.New("no file provided")
	ErrInvalidJSON = errors.New("invalid JSON format")
	ErrReadFailed  = errors.New("read file")
)

// LoadError is returned by the loader. Err carries the underlying cause
// (the JSON decoder diagnostic or the I/O error) when there is one.
type LoadError struct {
	Kind LoadErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	base := e.sentinel().Error()
	if e.Err == nil {
		return base
	}
	return base + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *LoadError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *LoadError) sentinel() error {
	switch e.Kind {
	case MissingFile:
		return ErrMissingFile
	case InvalidJSON:
		return ErrInvalidJSON
	default:
		return ErrReadFailed
	}
}

// Load reads the whole file from r, decodes its text and parses it as JSON.
// Either the full document is returned or an error; there are no partial
// results. A nil reader fails with MissingFile.
func Load(r io.Reader) (Document, error) {
	if IsNilReader(r) {
		return Document{}, &LoadError{Kind: MissingFile}
	}

	text, err := readText(r)
	if err != nil {
		return Document{}, &LoadError{Kind: ReadFailed, Err: err}
	}

	root, err := Decode(bytes.NewReader(text))
	if err != nil {
		return Document{}, &LoadError{Kind: InvalidJSON, Err: err}
	}
	return Document{Root: root}, nil
}

// LoadBytes parses an in-memory file. A nil slice is treated as empty
// content, not as a missing file.
func LoadBytes(data []byte) (Document, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile opens path and loads it. An empty path fails with MissingFile.
func LoadFile(path string) (Document, error) {
	if path == "" {
		return Document{}, &LoadError{Kind: MissingFile}
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, &LoadError{Kind: MissingFile, Err: err}
		}
		return Document{}, &LoadError{Kind: ReadFailed, Err: err}
	}
	defer f.Close()
	return Load(f)
}

// readText reads all of r as text. A UTF-8 BOM is dropped, UTF-16 files with
// a BOM are transcoded and invalid UTF-8 becomes U+FFFD.
func readText(r io.Reader) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return io.ReadAll(transform.NewReader(r, dec))
}

// IsNilReader reports whether r is absent. It catches both a nil interface and a typed nil pointer, such as
// a (*os.File)(nil) handed over by a caller that never opened a file.
func IsNilReader(r io.Reader) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
