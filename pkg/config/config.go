// Package config loads the optional run configuration file: the blacklist
// of filenames to skip and the options handed to the lint engine.
//
// The format is chosen by suffix. ".yaml" and ".yml" are read as YAML,
// ".json" and ".jshintrc" as JSON, and anything else as a Java-style
// .properties file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"hintrun/pkg/engine"
)

// BlacklistKey is the reserved key holding whitespace-separated filenames
// to skip. It is never forwarded to the engine.
const BlacklistKey = "blackList"

// ErrLoadFailure indicates the configuration file could not be read or parsed.
var ErrLoadFailure = errors.New("cannot load configuration")

// Blacklist is a set of bare filenames excluded from a run.
type Blacklist map[string]struct{}

// NewBlacklist builds a blacklist from names.
func NewBlacklist(names ...string) Blacklist {
	b := make(Blacklist, len(names))
	for _, n := range names {
		if n != "" {
			b[n] = struct{}{}
		}
	}
	return b
}

// Contains reports whether name is blacklisted. A nil Blacklist contains nothing.
func (b Blacklist) Contains(name string) bool {
	_, ok := b[name]
	return ok
}

// Settings is the result of loading a configuration file.
type Settings struct {
	Blacklist Blacklist
	Engine    engine.Options
}

// Empty returns settings with no blacklist and no engine options.
func Empty() *Settings {
	return &Settings{Blacklist: Blacklist{}, Engine: engine.Options{}}
}

// Load reads the configuration at path. An empty path yields empty settings.
// Every key except BlacklistKey becomes an engine option, whether or not a
// blacklist is present.
func Load(path string, logger *zap.Logger) (*Settings, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return Empty(), nil
	}

	raw, err := readRaw(path)
	if err != nil {
		logger.Error("Failed to load configuration", zap.String("filePath", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, path, err)
	}

	s := Empty()
	for key, value := range raw {
		if key == BlacklistKey {
			for _, name := range splitNames(value) {
				s.Blacklist[name] = struct{}{}
			}
			continue
		}
		s.Engine[key] = value
	}

	logger.Debug("Loaded configuration",
		zap.String("filePath", path),
		zap.Int("blacklisted", len(s.Blacklist)),
		zap.Int("engineOptions", len(s.Engine)))
	return s, nil
}

// readRaw decodes the file into a flat key/value map according to its suffix.
func readRaw(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAML(path)
	case ".json", ".jshintrc":
		return readJSON(path)
	default:
		return readProperties(path)
	}
}

func readYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return raw, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	for k, v := range raw {
		raw[k] = normalizeJSON(v)
	}
	return raw, nil
}

// normalizeJSON turns json.Number into int64 or float64, recursively.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = normalizeJSON(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeJSON(t[k])
		}
		return t
	default:
		return v
	}
}

func readProperties(path string) (map[string]any, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]any, p.Len())
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		if key == BlacklistKey {
			raw[key] = value
			continue
		}
		raw[key] = coerce(value)
	}
	return raw, nil
}

// coerce maps a properties string onto the closest primitive.
func coerce(value string) any {
	v := strings.TrimSpace(value)
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return value
}

// splitNames extracts filenames from a blacklist value: a whitespace
// separated string or a list.
func splitNames(value any) []string {
	switch t := value.(type) {
	case nil:
		return nil
	case string:
		return strings.Fields(t)
	case []any:
		var names []string
		for _, item := range t {
			names = append(names, splitNames(item)...)
		}
		return names
	default:
		return strings.Fields(fmt.Sprint(t))
	}
}
