// Package config loads the optional .gardenplanner.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// FileName is the project config file looked up at the project root.
const FileName = ".gardenplanner.yaml"

// Identity overrides the record identity fields.
type Identity struct {
	Category string `yaml:"category"`
	Name     string `yaml:"name"`
}

// File mirrors .gardenplanner.yaml. Unset keys keep built-in defaults.
type File struct {
	Target      string        `yaml:"target"`
	Fields      []string      `yaml:"fields"`
	AddMissing  *bool         `yaml:"add_missing"`
	Declaration string        `yaml:"declaration"`
	Auxiliary   []string      `yaml:"auxiliary"`
	Identity    Identity      `yaml:"identity"`
	EvalTimeout time.Duration `yaml:"eval_timeout"`

	// Dir is the directory holding the file. Relative paths in the file are
	// resolved against it.
	Dir string `yaml:"-"`
}

// Load parses the config file at path. Unknown keys are rejected.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("invalid %s: %s", path, yaml.FormatError(err, false, true))
	}
	if f.EvalTimeout < 0 {
		return nil, fmt.Errorf("invalid %s: eval_timeout must not be negative", path)
	}
	f.Fields = normalizeList(f.Fields)
	f.Auxiliary = normalizeList(f.Auxiliary)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f.Dir = filepath.Dir(abs)
	return &f, nil
}

// Discover loads FileName from dir. A missing file yields (nil, nil).
func Discover(dir string) (*File, error) {
	f, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return f, err
}

// ResolvePath makes p relative to the config file's directory.
func (f *File) ResolvePath(p string) string {
	if f == nil || p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.Dir, p)
}

// ParseFields splits a comma-separated field list, dropping blanks.
func ParseFields(raw string) []string {
	return normalizeList(strings.Split(raw, ","))
}

func normalizeList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
