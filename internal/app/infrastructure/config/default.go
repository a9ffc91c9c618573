package config

func (m *Manager) GetDefault() *Config {
	return &Config{
		App: App{
			LogLevel:  "info",
			DebugAddr: "127.0.0.1:8080",
		},
		Connection: Connection{
			Server:                 "irc-ws.chat.twitch.tv",
			Port:                   443,
			Secure:                 true,
			Reconnect:              true,
			ReconnectIntervalMs:    1000,
			MaxReconnectIntervalMs: 30000,
			ReconnectDecay:         1.5,
			MaxReconnectAttempts:   -1,
			TimeoutMs:              9999,
			PingIntervalMs:         60000,
			JoinIntervalMs:         2000,
		},
	}
}
