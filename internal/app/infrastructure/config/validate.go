package config

import (
	"errors"
	"fmt"
	"strings"
)

func (m *Manager) validate(cfg *Config) error {
	// app
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.App.LogLevel != "" && !validLevels[cfg.App.LogLevel] {
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error; got %s", cfg.App.LogLevel)
	}

	// identity: either both username and oauth, or neither (anonymous)
	if cfg.Identity.Username == "" && cfg.Identity.OAuth != "" {
		return errors.New("identity.username is required when identity.oauth is set")
	}
	if cfg.Identity.Username != "" && cfg.Identity.OAuth == "" {
		return errors.New("identity.oauth is required when identity.username is set")
	}

	// connection
	conn := &cfg.Connection
	if conn.Server == "" {
		conn.Server = "irc-ws.chat.twitch.tv"
	}
	if conn.Port == 0 {
		if conn.Secure {
			conn.Port = 443
		} else {
			conn.Port = 80
		}
	}
	if conn.Port < 0 || conn.Port > 65535 {
		return fmt.Errorf("connection.port must be in [0,65535]; got %d", conn.Port)
	}
	if conn.Proxy != nil {
		if conn.Proxy.Address == "" {
			return errors.New("connection.proxy.address is required")
		}
		if conn.Proxy.Port <= 0 || conn.Proxy.Port > 65535 {
			return errors.New("connection.proxy.port must be in [1,65535]")
		}
	}
	if conn.ReconnectIntervalMs <= 0 {
		conn.ReconnectIntervalMs = 1000
	}
	if conn.MaxReconnectIntervalMs < conn.ReconnectIntervalMs {
		conn.MaxReconnectIntervalMs = 30000
	}
	if conn.ReconnectDecay < 1 {
		conn.ReconnectDecay = 1.5
	}
	if conn.TimeoutMs <= 0 {
		conn.TimeoutMs = 9999
	}
	if conn.PingIntervalMs <= 0 {
		conn.PingIntervalMs = 60000
	}
	if conn.JoinIntervalMs < 300 {
		conn.JoinIntervalMs = 2000
	}

	// channels
	for i, channel := range cfg.Channels {
		if strings.TrimSpace(channel) == "" {
			return fmt.Errorf("channels[%d] is empty", i)
		}
	}
	return nil
}
