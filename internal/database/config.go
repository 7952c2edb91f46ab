package database

import (
	"fmt"
	"strings"
)

// DatabaseConfig selects the driver and its connection settings. URL and the
// discrete fields are for postgres, Path is for sqlite.
type DatabaseConfig struct {
	Driver string

	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	Path string
}

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// driver normalises Driver. An empty driver means sqlite. Unknown drivers are
// returned lowercased so callers can reject them.
func (c *DatabaseConfig) driver() string {
	switch d := strings.ToLower(c.Driver); d {
	case "postgres", "postgresql":
		return driverPostgres
	case "sqlite", "sqlite3", "":
		return driverSQLite
	default:
		return d
	}
}

func (c *DatabaseConfig) String() string {
	url := ""
	if c.URL != "" {
		url = "[REDACTED]"
	}
	return fmt.Sprintf("DatabaseConfig{Driver: %s, URL: %s, Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.driver(), url, c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

// DSN returns the connection string for the configured driver, or "" when the
// driver is not supported.
func (c *DatabaseConfig) DSN() string {
	switch c.driver() {
	case driverPostgres:
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case driverSQLite:
		return c.Path
	}
	return ""
}
