package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dshills/mininet/internal/log"
)

// Supported driver names.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Config holds everything mininet needs at startup: the four connection
// fields, the driver that decides the SQL dialect, and logging.
type Config struct {
	Driver   string `koanf:"driver" validate:"required,oneof=mysql postgres pgx sqlite"`
	Host     string `koanf:"host" validate:"required_unless=Driver sqlite"`
	Database string `koanf:"database" validate:"required"`
	User     string `koanf:"user" validate:"required_unless=Driver sqlite"`
	Password string `koanf:"password"`

	Log log.Config `koanf:"log"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Driver:   DriverMySQL,
		Host:     "localhost",
		Database: "mininet_db",
		User:     "root",
		Log:      log.DefaultConfig(),
	}
}

// LoadFromFlags merges command-line flags into the configuration.
// Empty values leave the current setting alone.
func (c *Config) LoadFromFlags(driver, host, database, user, password, logLevel string) {
	if driver != "" {
		c.Driver = driver
	}
	if host != "" {
		c.Host = host
	}
	if database != "" {
		c.Database = database
	}
	if user != "" {
		c.User = user
	}
	if password != "" {
		c.Password = password
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.Driver = strings.ToLower(c.Driver)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	if err := validate.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Namespace())
	field = strings.TrimPrefix(field, "config.")
	switch fe.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s check", field, fe.Tag())
	}
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "****"
	}
	return c
}
