package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileLoader decodes configuration files into structs.
type FileLoader struct {
	fs     FileSystem
	strict bool
}

// FileOption configures a FileLoader.
type FileOption func(*FileLoader)

// WithFS sets the file system files are read from.
func WithFS(fsys FileSystem) FileOption {
	return func(l *FileLoader) {
		if fsys != nil {
			l.fs = fsys
		}
	}
}

// WithStrict rejects keys that do not map to a struct field.
func WithStrict(strict bool) FileOption {
	return func(l *FileLoader) {
		l.strict = strict
	}
}

// New creates a FileLoader reading from the OS file system.
func New(opts ...FileOption) *FileLoader {
	l := &FileLoader{fs: DefaultFS()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load decodes the file at path into v.
// It reports false with a nil error if the file doesn't exist.
func (l *FileLoader) Load(path string, v any) (bool, error) {
	format, err := FormatOf(path)
	if err != nil {
		return false, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil // File doesn't exist, not an error
		}
		return false, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := l.decode(path, format, data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Decode reads r fully and decodes it into v.
func (l *FileLoader) Decode(r io.Reader, format Format, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return l.decode("<reader>", format, data, v)
}

func (l *FileLoader) decode(source string, format Format, data []byte, v any) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		if l.strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			return tomlError(source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(l.strict)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return yamlError(source, err)
		}
	default:
		return fmt.Errorf("decoding %s: unsupported format %v", source, format)
	}
	return nil
}

func tomlError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		pe.Line, pe.Column = derr.Position()
	}
	var serr *toml.StrictMissingError
	if errors.As(err, &serr) && len(serr.Errors) > 0 {
		pe.Line, pe.Column = serr.Errors[0].Position()
	}
	return pe
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func yamlError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
