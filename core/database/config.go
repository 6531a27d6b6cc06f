package database

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Config holds database connection settings.
type Config struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`

	// Environment set to "development" switches AutoMigrate and LogQueries on
	// unless they were configured explicitly.
	Environment string `yaml:"environment" envconfig:"APP_ENV"`
	// AutoMigrate synchronises the schema from the models instead of running SQL
	// migrations. Not for production databases.
	AutoMigrate *bool `yaml:"auto_migrate" envconfig:"DB_AUTO_MIGRATE"`
	LogQueries  *bool `yaml:"log_queries" envconfig:"DB_LOG_QUERIES"`
}

// EnvDevelopment is the environment name that enables schema sync and query logging.
const EnvDevelopment = "development"

// Normalize applies defaults and reports missing credentials.
func (c *Config) Normalize() error {
	if c == nil {
		return fmt.Errorf("nil database config")
	}
	if strings.TrimSpace(c.Host) == "" {
		c.Host = "localhost"
	}
	if strings.TrimSpace(c.Port) == "" {
		c.Port = "5432"
	}
	if strings.TrimSpace(c.SSLMode) == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
	}
	if strings.TrimSpace(c.MigrationsDir) == "" {
		c.MigrationsDir = "migrations"
	}
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))

	var missing []string
	if c.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("database credentials are not properly configured, missing: %s", strings.Join(missing, " "))
	}
	return nil
}

// SchemaSync reports whether the schema should be synchronised from the models.
func (c Config) SchemaSync() bool {
	if c.AutoMigrate != nil {
		return *c.AutoMigrate
	}
	return c.Environment == EnvDevelopment
}

// QueryLogging reports whether every SQL statement should be logged.
func (c Config) QueryLogging() bool {
	if c.LogQueries != nil {
		return *c.LogQueries
	}
	return c.Environment == EnvDevelopment
}

// DSN returns a key/value connection string understood by lib/pq and pgx.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as golang-migrate expects.
// Credentials are escaped.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}
