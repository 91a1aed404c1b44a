package lock

// Config holds configuration for the singleton run guard.
type Config struct {
	// Enabled turns the Redis guard on. When false runs are not coordinated.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Addr is the Redis address (host:port).
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password authenticates against Redis.
	Password string `mapstructure:"password" default:""`
	// DB selects the Redis logical database.
	DB int `mapstructure:"db" default:"0"`
	// Key is the lock key shared by every invocation against the same target.
	Key string `mapstructure:"key" default:"accounting-sync:batch"`
	// TTLSeconds is the lock lease. It is refreshed while the holder is alive.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"60"`
	// DialTimeoutMillis bounds the connection attempt.
	DialTimeoutMillis int `mapstructure:"dial_timeout_millis" default:"2000"`
}
