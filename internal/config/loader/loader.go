// Package loader reads binding configuration files.
//
// TOML and YAML files are decoded straight into typed structs; the format
// is chosen by file extension. Environment variables can override
// individual settings through EnvLoader.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is a configuration file encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

var formatNames = [...]string{FormatTOML: "toml", FormatYAML: "yaml"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// FormatOf picks the format from path's extension, ignoring case.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%s: unsupported config extension %q", path, ext)
}

// FileSystem is where a FileLoader reads from. A missing file must be
// reported with an error matching fs.ErrNotExist.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS reads from the OS file system.
func DefaultFS() FileSystem { return osFS{} }
