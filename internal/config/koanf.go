package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable mininet reads.
	EnvPrefix = "MININET_"

	// ConfigPathEnvVar names a config file when --config is not given.
	ConfigPathEnvVar = EnvPrefix + "CONFIG"

	// DefaultEnvFile is loaded when present; a missing one is not an error.
	DefaultEnvFile = ".env"
)

// Sources says where Load looks besides the built-in defaults.
type Sources struct {
	// File is a YAML (or JSON) config file. Falls back to $MININET_CONFIG.
	File string
	// EnvFile is a dotenv file merged into the process environment before
	// MININET_* variables are read. Defaults to DefaultEnvFile.
	EnvFile string
}

// Load layers defaults, the config file, the dotenv file and MININET_*
// environment variables, in that order of increasing precedence. Flags are
// applied afterwards by the caller with LoadFromFlags, then Validate.
func Load(src Sources) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := src.File
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		// YAML is a superset of JSON, so one parser covers both formats.
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := loadEnvFile(src.EnvFile); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

var envMappings = map[string]string{
	"driver":     "driver",
	"host":       "host",
	"database":   "database",
	"user":       "user",
	"password":   "password",
	"log_level":  "log.level",
	"log_format": "log.format",
}

// envTransformFunc maps MININET_LOG_LEVEL to log.level and so on. Unknown
// variables, including MININET_CONFIG, are dropped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}
