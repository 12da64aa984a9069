package kreuzberg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// ErrConfigNotFound is returned by Discover when no kreuzberg configuration
// file exists between the start directory and the filesystem root.
var ErrConfigNotFound = errors.New("kreuzberg: no configuration file found")

// Names probed by Discover, in priority order within each directory.
var configFileNames = []string{
	"kreuzberg.toml",
	"kreuzberg.yaml",
	"kreuzberg.yml",
	"kreuzberg.json",
}

// FromJSON parses a canonical snake_case JSON document into a validated
// ExtractionConfig.
func FromJSON(data []byte) (*ExtractionConfig, error) {
	var cfg ExtractionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, NewValidationError("invalid config JSON", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToJSON serializes cfg to the canonical snake_case JSON schema. Unset
// fields are omitted so defaults survive a round trip.
func ToJSON(cfg *ExtractionConfig) ([]byte, error) {
	if cfg == nil {
		return nil, NewValidationError("config must not be nil", nil)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, NewInternalError("marshal config", err)
	}
	return data, nil
}

// FromFile loads a configuration file, dispatching on the extension:
// .toml, .yaml/.yml, or .json. All formats share the canonical field names.
func FromFile(path string) (*ExtractionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError(fmt.Sprintf("read config %s", path), err)
	}
	var cfg ExtractionConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, NewValidationError(fmt.Sprintf("invalid TOML in %s", path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, NewValidationError(fmt.Sprintf("invalid YAML in %s", path), err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, NewValidationError(fmt.Sprintf("invalid JSON in %s", path), err)
		}
	default:
		return nil, NewValidationError(fmt.Sprintf("unsupported config extension %q (want .toml, .yaml, .yml, or .json)", filepath.Ext(path)), nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Discover walks from the current working directory toward the filesystem
// root, probing each directory for kreuzberg.{toml,yaml,yml,json} in that
// order, and loads the first match. Returns ErrConfigNotFound when nothing
// is found.
func Discover() (*ExtractionConfig, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", NewIOError("resolve working directory", err)
	}
	return DiscoverFrom(dir)
}

// DiscoverFrom behaves like Discover starting at dir instead of the working
// directory.
func DiscoverFrom(dir string) (*ExtractionConfig, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", NewIOError(fmt.Sprintf("resolve %s", dir), err)
	}
	for {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				cfg, err := FromFile(path)
				if err != nil {
					return nil, path, err
				}
				return cfg, path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", ErrConfigNotFound
		}
		dir = parent
	}
}

// ServerConfig holds server-level settings for applications embedding the
// engine behind an HTTP surface. Values come from KREUZBERG_* environment
// variables layered over defaults; the engine itself never starts a server.
type ServerConfig struct {
	Host        string   `json:"host" toml:"host" yaml:"host"`
	Port        int      `json:"port" toml:"port" yaml:"port"`
	CORSOrigins []string `json:"cors_origins" toml:"cors_origins" yaml:"cors_origins"`
	MaxBodySize int64    `json:"max_body_size" toml:"max_body_size" yaml:"max_body_size"`
}

// DefaultServerConfig returns the server defaults before env overrides.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:        "127.0.0.1",
		Port:        8000,
		MaxBodySize: 100 << 20,
	}
}

// ServerConfigFromEnv reads defaults -> KREUZBERG_HOST, KREUZBERG_PORT,
// KREUZBERG_CORS_ORIGINS (comma separated), KREUZBERG_MAX_BODY_SIZE.
// Env wins over defaults.
func ServerConfigFromEnv() (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if v := os.Getenv("KREUZBERG_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("KREUZBERG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return cfg, NewValidationError(fmt.Sprintf("KREUZBERG_PORT must be a port number, got %q", v), nil)
		}
		cfg.Port = port
	}
	if v := os.Getenv("KREUZBERG_CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}
	if v := os.Getenv("KREUZBERG_MAX_BODY_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil || size < 1 {
			return cfg, NewValidationError(fmt.Sprintf("KREUZBERG_MAX_BODY_SIZE must be a positive byte count, got %q", v), nil)
		}
		cfg.MaxBodySize = size
	}
	return cfg, nil
}
