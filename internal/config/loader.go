package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"bootkit/internal/common/fsutil"
)

// Config holds runtime parameters for the CLI and the admin server.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Suite            string      `json:"suite" yaml:"suite" toml:"suite"`
	Store            StoreConfig `json:"store" yaml:"store" toml:"store"`
	EnvironmentsFile string      `json:"environments_file" yaml:"environments_file" toml:"environments_file"`
	Log              LogConfig   `json:"log" yaml:"log" toml:"log"`
	HTTP             HTTPConfig  `json:"http" yaml:"http" toml:"http"`
}

type StoreConfig struct {
	Backend string `json:"backend" yaml:"backend" toml:"backend" validate:"omitempty,oneof=memory file sqlite"`
	Path    string `json:"path" yaml:"path" toml:"path" validate:"required_unless=Backend memory"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn warning error err"`
	Format string `json:"format" yaml:"format" toml:"format" validate:"omitempty,oneof=console json"`
}

type HTTPConfig struct {
	Addr string     `json:"addr" yaml:"addr" toml:"addr"`
	CORS CORSConfig `json:"cors" yaml:"cors" toml:"cors"`
}

type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
	MaxAgeSeconds  int      `json:"max_age_seconds" yaml:"max_age_seconds" toml:"max_age_seconds" validate:"gte=0"`
}

const (
	DefaultSuite   = "default"
	DefaultBackend = "memory"
	DefaultAddr    = ":8080"
)

// DefaultPath is where the CLI looks for a config file when --config is not given.
const DefaultPath = "~/.config/bootkit/config.yaml"

// Default returns a Config with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Suite == "" {
		c.Suite = DefaultSuite
	}
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}
	if c.HTTP.CORS.Enabled {
		if len(c.HTTP.CORS.AllowedMethods) == 0 {
			c.HTTP.CORS.AllowedMethods = []string{"GET", "PUT", "OPTIONS"}
		}
		if len(c.HTTP.CORS.AllowedHeaders) == 0 {
			c.HTTP.CORS.AllowedHeaders = []string{"Content-Type"}
		}
	}
}

// ApplyEnv overrides fields from BOOTKIT_* variables looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Suite, "BOOTKIT_SUITE")
	set(&c.Store.Backend, "BOOTKIT_STORE")
	set(&c.Store.Path, "BOOTKIT_STORE_PATH")
	set(&c.EnvironmentsFile, "BOOTKIT_ENVIRONMENTS")
	set(&c.Log.Level, "BOOTKIT_LOG_LEVEL")
	set(&c.Log.Format, "BOOTKIT_LOG_FORMAT")
	set(&c.HTTP.Addr, "BOOTKIT_ADDR")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks enumerations and cross-field requirements.
func (c Config) Validate() error {
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value())
	case "required_unless":
		return fmt.Sprintf("%s is required for this store backend", fe.Namespace())
	default:
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Resolve loads path when given, else DefaultPath when it exists. Env
// overrides apply next, then each override func (command-line flags), then
// defaults. The result is validated.
func Resolve(path string, getenv func(string) string, overrides ...func(*Config)) (Config, error) {
	var cfg Config
	if path == "" {
		if p, err := fsutil.ExpandHome(DefaultPath); err == nil && fsutil.PathExists(p) {
			path = p
		}
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}
	if getenv != nil {
		cfg.ApplyEnv(getenv)
	}
	for _, o := range overrides {
		o(&cfg)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
