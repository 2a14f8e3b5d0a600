package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL            = "https://api.opinion.trade"
	DefaultWSURL              = "wss://ws.opinion.trade"
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultHeartbeatInterval  = 30 * time.Second
	DefaultReconnectBaseDelay = 5 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultWSBufferSize       = 4096
	DefaultCacheMaxSize       = 10000
	DefaultReconcileInterval  = 5 * time.Minute
	DefaultPageSize           = 200
	DefaultInitialLoadTimeout = 2 * time.Minute
	DefaultServerHost         = "0.0.0.0"
	DefaultServerPort         = 8000
	DefaultReadTimeout        = 10 * time.Second
	DefaultWriteTimeout       = 30 * time.Second
	DefaultLimit              = 50
	DefaultMaxLimit           = 200
	DefaultBatchSize          = 500
	DefaultFlushInterval      = 1 * time.Second
	DefaultHistoryBufferSize  = 10000
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
)

func (c *ServiceConfig) applyDefaults() {
	if c.Instance.LogLevel == "" {
		c.Instance.LogLevel = "info"
	}

	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// WebSocket defaults
	if c.WebSocket.URL == "" {
		c.WebSocket.URL = DefaultWSURL
	}
	if c.WebSocket.HeartbeatInterval == 0 {
		c.WebSocket.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.WebSocket.ReconnectBaseDelay == 0 {
		c.WebSocket.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.WebSocket.ReconnectMaxDelay == 0 {
		c.WebSocket.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.WebSocket.BufferSize == 0 {
		c.WebSocket.BufferSize = DefaultWSBufferSize
	}

	// Cache defaults
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = DefaultCacheMaxSize
	}

	// Topic sync defaults
	if c.Topics.ReconcileInterval == 0 {
		c.Topics.ReconcileInterval = DefaultReconcileInterval
	}
	if c.Topics.PageSize == 0 {
		c.Topics.PageSize = DefaultPageSize
	}
	if c.Topics.InitialLoadTimeout == 0 {
		c.Topics.InitialLoadTimeout = DefaultInitialLoadTimeout
	}

	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.DefaultLimit == 0 {
		c.Server.DefaultLimit = DefaultLimit
	}
	if c.Server.MaxLimit == 0 {
		c.Server.MaxLimit = DefaultMaxLimit
	}

	// History defaults
	if c.History.BatchSize == 0 {
		c.History.BatchSize = DefaultBatchSize
	}
	if c.History.FlushInterval == 0 {
		c.History.FlushInterval = DefaultFlushInterval
	}
	if c.History.BufferSize == 0 {
		c.History.BufferSize = DefaultHistoryBufferSize
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}
}
