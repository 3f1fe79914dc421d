package loader

import (
	"os"
	"sort"
	"strings"
)

// DefaultEnvPrefix is the prefix of recognized environment variables.
const DefaultEnvPrefix = "HOVERINTENT_"

// EnvLoader collects prefixed environment variables as dotted setting paths.
//
// HOVERINTENT_DEFAULTS_MOVE_THRESHOLD becomes "defaults.moveThreshold" and
// HOVERINTENT_LOG_LEVEL becomes "log.level".
type EnvLoader struct {
	prefix  string
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "HOVERINTENT_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom creates a loader reading from a fixed KEY=value list.
func NewEnvLoaderFrom(prefix string, env []string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		environ: func() []string { return env },
	}
}

// Load returns the prefixed variables keyed by setting path.
// Empty values are kept: an empty variable is set, not unset.
func (l *EnvLoader) Load() map[string]string {
	out := make(map[string]string)
	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		out[l.envToPath(name)] = value
	}
	return out
}

// Keys returns the setting paths Load would produce, sorted.
func (l *EnvLoader) Keys() []string {
	m := l.Load()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// envToPath converts HOVERINTENT_DEFAULTS_MOVE_THRESHOLD to defaults.moveThreshold.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	parts := strings.Split(name, "_")

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	setting := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + setting
}

// ExpandEnvInString expands environment variables in a string.
// Supports both $VAR and ${VAR} syntax.
func ExpandEnvInString(s string) string {
	return os.ExpandEnv(s)
}
