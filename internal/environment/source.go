package environment

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"bootkit/internal/common/fsutil"
)

// Source yields raw profile records in load order.
type Source interface {
	Records() ([]Record, error)
}

// StaticSource is an in-memory list of records.
type StaticSource []Record

func (s StaticSource) Records() ([]Record, error) {
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}

// document is the on-disk layout shared by every supported format.
type document struct {
	Environments []Record `json:"environments" yaml:"environments" toml:"environments"`
}

// FileSource reads records from a file based on its extension.
// Supports: .yaml/.yml, .json, .toml
type FileSource struct {
	Path string
}

func (s FileSource) Records() ([]Record, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("empty environments path")
	}
	path, err := fsutil.ExpandHome(s.Path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read environments: %w", err)
	}
	return decode(filepath.Ext(path), b)
}

func decode(ext string, b []byte) ([]Record, error) {
	var doc document
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported environments extension: %s", ext)
	}
	return doc.Environments, nil
}

//go:embed environments.yaml
var bundled []byte

// Bundled returns the environment list shipped with the binary.
func Bundled() Source { return bundledSource{} }

type bundledSource struct{}

func (bundledSource) Records() ([]Record, error) { return decode(".yaml", bundled) }
