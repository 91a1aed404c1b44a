package server

// Config holds configuration for the operations API.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReportCacheSeconds is how long a computed reconciliation report is served from memory.
	ReportCacheSeconds int `mapstructure:"report_cache_seconds" default:"60"`
}

// IsProtected reports whether requests must carry the API key.
func (c Config) IsProtected() bool {
	return c.ApiKey != ""
}
