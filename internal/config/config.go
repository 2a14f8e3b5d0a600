package config

import "time"

// ServiceConfig is the root configuration for a topic cache instance.
type ServiceConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Cache     CacheConfig     `yaml:"cache"`
	Topics    TopicsConfig    `yaml:"topics"`
	Server    ServerConfig    `yaml:"server"`
	History   HistoryConfig   `yaml:"history"`
	Database  DBConfig        `yaml:"database"`
}

// InstanceConfig identifies this service instance.
type InstanceConfig struct {
	ID       string `yaml:"id"`
	LogLevel string `yaml:"log_level"`
}

// APIConfig holds opinion.trade REST API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// WebSocketConfig holds streaming connection settings.
type WebSocketConfig struct {
	URL                string        `yaml:"url"`
	APIKey             string        `yaml:"api_key"`
	HeartbeatInterval  time.Duration `yaml:"heartbeat_interval"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	BufferSize         int           `yaml:"buffer_size"`
}

// CacheConfig holds topic store settings.
type CacheConfig struct {
	MaxSize int `yaml:"max_size"`
}

// TopicsConfig holds topic sync settings.
type TopicsConfig struct {
	ReconcileInterval  time.Duration `yaml:"reconcile_interval"`
	PageSize           int           `yaml:"page_size"`
	InitialLoadTimeout time.Duration `yaml:"initial_load_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	DefaultLimit int           `yaml:"default_limit"`
	MaxLimit     int           `yaml:"max_limit"`
}

// HistoryConfig holds price history writer settings. The writer runs
// only when Enabled is set and the database section is configured.
type HistoryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
