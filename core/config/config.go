package config

import (
	"reflect"
	"strings"

	"accounting-sync/core/database"
	"accounting-sync/core/lock"
	"accounting-sync/core/logger"
	"accounting-sync/core/server"
	"accounting-sync/core/storage"
	"accounting-sync/feature/migration"
	"accounting-sync/feature/migration/errs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the operations API.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (snapshots and report artifacts).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the target database connection.
	Database database.Config `mapstructure:"database"`
	// Lock holds configuration for the singleton run guard.
	Lock lock.Config `mapstructure:"lock"`
	// Migration holds configuration for the batch engine and the verifier.
	Migration migration.Config `mapstructure:"migration"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. DATABASE_DRIVER -> database.driver)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errs.Configuration("failed to decode configuration", err)
	}

	return &config, nil
}

// Validate checks the settings every command needs before touching the target.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return errs.Configuration("invalid database configuration", err)
	}
	if c.Lock.Enabled && c.Lock.Addr == "" {
		return errs.Configuration("lock is enabled but lock.addr is empty", nil)
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
