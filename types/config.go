package types

// AppConfig represents the complete application configuration.
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Remote  RemoteConfig  `mapstructure:"remote" validate:"omitempty"`
}

// ProjectConfig holds project-related settings.
type ProjectConfig struct {
	RootDir string `mapstructure:"rootDir" validate:"required"`
	// Name labels fresh project documents; the persisted document wins once
	// it exists.
	Name string `mapstructure:"name" validate:"omitempty,min=1,max=50"`
}

// DataConfig holds local data storage configuration.
type DataConfig struct {
	File   string `mapstructure:"file" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
}

// ServerConfig holds settings for the ganttline server.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	// DBPath locates the SQLite database file. ':memory:' is accepted for
	// ephemeral servers.
	DBPath string `mapstructure:"dbPath" validate:"required"`
	// AllowedOrigins lists origins accepted by the CORS middleware.
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// RemoteConfig holds settings for syncing against a remote server.
type RemoteConfig struct {
	Address string `mapstructure:"address" validate:"omitempty,url"`
	// ProjectID selects which remote project push/pull operate on.
	ProjectID string `mapstructure:"projectId" validate:"omitempty,uuid4"`
	// RequestTimeoutSeconds controls the HTTP client timeout for sync calls.
	RequestTimeoutSeconds int `mapstructure:"requestTimeoutSeconds" validate:"omitempty,min=1,max=600"`
	// MaxRetries controls automatic retries for fire-and-forget pushes.
	MaxRetries int `mapstructure:"maxRetries" validate:"omitempty,min=0,max=5"`
}
