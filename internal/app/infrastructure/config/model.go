package config

type Config struct {
	App        App        `json:"app"`
	Identity   Identity   `json:"identity"`
	Connection Connection `json:"connection"`
	Channels   []string   `json:"channels"`
}

type App struct {
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	DebugAddr string `json:"debug_addr"`
	AuthToken string `json:"auth_token"`
}

// Identity is the account the client logs in as. An empty username means an
// anonymous (justinfan) session: reading works, sending does not.
type Identity struct {
	Username string `json:"username"`
	OAuth    string `json:"oauth"`
	ClientID string `json:"client_id"`
}

type Proxy struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type Connection struct {
	Server                 string  `json:"server"`
	Port                   int     `json:"port"`
	Secure                 bool    `json:"secure"`
	Proxy                  *Proxy  `json:"proxy"`
	Reconnect              bool    `json:"reconnect"`
	ReconnectIntervalMs    int     `json:"reconnect_interval_ms"`
	MaxReconnectIntervalMs int     `json:"max_reconnect_interval_ms"`
	ReconnectDecay         float64 `json:"reconnect_decay"`
	MaxReconnectAttempts   int     `json:"max_reconnect_attempts"`
	TimeoutMs              int     `json:"timeout_ms"`
	PingIntervalMs         int     `json:"ping_interval_ms"`
	JoinIntervalMs         int     `json:"join_interval_ms"`
}
