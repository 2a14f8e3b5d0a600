package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *ServiceConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	if c.WebSocket.URL == "" {
		return errors.New("websocket.url is required")
	}
	if c.WebSocket.ReconnectBaseDelay > c.WebSocket.ReconnectMaxDelay {
		return fmt.Errorf("websocket.reconnect_base_delay (%s) cannot exceed reconnect_max_delay (%s)",
			c.WebSocket.ReconnectBaseDelay, c.WebSocket.ReconnectMaxDelay)
	}

	if c.Cache.MaxSize < 1 {
		return errors.New("cache.max_size must be >= 1")
	}

	if c.Topics.PageSize < 1 {
		return errors.New("topics.page_size must be >= 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.DefaultLimit < 1 {
		return errors.New("server.default_limit must be >= 1")
	}
	if c.Server.MaxLimit < c.Server.DefaultLimit {
		return fmt.Errorf("server.max_limit (%d) cannot be below default_limit (%d)",
			c.Server.MaxLimit, c.Server.DefaultLimit)
	}

	if c.History.Enabled {
		if c.History.BatchSize < 1 {
			return errors.New("history.batch_size must be >= 1")
		}
		if c.History.BufferSize < 1 {
			return errors.New("history.buffer_size must be >= 1")
		}
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
