package database

import "errors"

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds configuration for the target database connection.
type Config struct {
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"5432"`
	// User is the database user.
	User string `mapstructure:"user" default:"postgres"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name (or file path for sqlite).
	Name string `mapstructure:"name" default:"accounting"`
	// Driver is the database driver (postgres, mysql, sqlite).
	Driver string `mapstructure:"driver" default:"postgres"`
	// SSLMode is passed to postgres connections.
	SSLMode string `mapstructure:"ssl_mode" default:"disable"`
	// TimeoutSeconds bounds connection setup and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Tracing installs the OpenTelemetry gorm plugin.
	Tracing bool `mapstructure:"tracing" default:"false"`
}

// Validate reports settings that make a connection impossible.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMySQL, DriverPostgres:
		if c.Host == "" {
			return errors.New("database.host is required")
		}
	case DriverSQLite:
	case "":
		return errors.New("database.driver is required")
	default:
		return errors.New("unsupported database.driver: " + c.Driver)
	}
	if c.Name == "" {
		return errors.New("database.name is required")
	}
	return nil
}
