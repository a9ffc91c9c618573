package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain/ident"
	"twitchchat/internal/app/infrastructure/config"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Open
	Closing
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	}
	return "CLOSED"
}

var (
	ErrNotConnected = errors.New("not connected to server")
	ErrAnonymous    = errors.New("cannot send with an anonymous identity")
	ErrDisconnected = errors.New("connection closed")
)

const (
	connectTimeout   = 30 * time.Second
	handshakeTimeout = 10 * time.Second
	anonymousToken   = "SCHMOOPIIE"
)

// Client owns the socket, the handshake, the keepalive cycle and the
// reconnect state machine. All inbound decoding and dispatch for one
// connection runs on a single goroutine, in arrival order.
type Client struct {
	log logger.Logger
	cfg *config.Config

	events  events
	waiter  *waiter
	session *session
	emotes  ports.EmotesPort

	mu       sync.Mutex
	ws       *websocket.Conn
	state    ConnectionState
	queue    *joinQueue
	server   string
	port     int
	secure   bool
	channels []string

	reconnectEnabled bool
	reconnecting     bool
	reconnections    int
	reconnectTimer   time.Duration
	maxReconNoted    bool
	wasCloseCalled   bool
	reason           string

	pingStop    chan struct{}
	pingTimeout *time.Timer
	latencyAt   time.Time
	latency     time.Duration

	writeMu sync.Mutex
}

// New builds a client from the loaded configuration. The emotes port may
// be nil for read-only clients that never echo their own messages.
func New(log logger.Logger, manager *config.Manager, emotes ports.EmotesPort) *Client {
	cfg := manager.Get()

	channels := make([]string, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		channels = append(channels, ident.Channel(ch))
	}

	c := &Client{
		log:              log,
		cfg:              cfg,
		waiter:           newWaiter(),
		session:          newSession(),
		emotes:           emotes,
		queue:            newJoinQueue(time.Duration(cfg.Connection.JoinIntervalMs) * time.Millisecond),
		channels:         channels,
		reconnectEnabled: cfg.Connection.Reconnect,
		reconnectTimer:   time.Duration(cfg.Connection.ReconnectIntervalMs) * time.Millisecond,
	}

	if emotes != nil {
		emotes.SetOnUpdate(func(sets string, catalog map[string][]ports.Emote) {
			c.events.emitEmoteSets(sets, catalog)
		})
	}
	return c
}

// Connect opens the socket, runs the handshake and blocks until the server
// confirms the login or the connect phase fails.
func (c *Client) Connect() error {
	conn := &c.cfg.Connection

	c.mu.Lock()
	if c.state != Disconnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot connect: connection is %s", state)
	}

	server, port, secure := conn.Server, conn.Port, conn.Secure
	if secure {
		port = 443
	}
	if port == 443 {
		secure = true
	}
	c.server, c.port, c.secure = server, port, secure

	// advance the backoff speculatively; a confirmed login resets it
	c.reconnectTimer = time.Duration(float64(c.reconnectTimer) * conn.ReconnectDecay)
	if maxTimer := time.Duration(conn.MaxReconnectIntervalMs) * time.Millisecond; c.reconnectTimer > maxTimer {
		c.reconnectTimer = maxTimer
	}
	c.state = Connecting
	c.mu.Unlock()

	c.log.Info(fmt.Sprintf("Connecting to %s on port %d..", server, port))
	c.events.emitConnecting(server, port)

	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	ws, _, err := c.dialer().Dial(fmt.Sprintf("%s://%s:%d/", scheme, server, port), nil)
	if err != nil {
		c.log.Error("Unable to connect", err)
		c.mu.Lock()
		c.state = Disconnected
		recEnabled := c.reconnectEnabled
		c.mu.Unlock()

		c.events.emitDisconnected("Unable to connect.")
		if recEnabled {
			c.scheduleReconnect()
		}
		return fmt.Errorf("connect: %w", err)
	}

	c.mu.Lock()
	c.ws = ws
	c.state = Open
	c.wasCloseCalled = false
	c.reason = ""
	c.mu.Unlock()

	username := c.cfg.Identity.Username
	if username == "" {
		username = ident.Justinfan()
	}
	password := ident.Token(c.cfg.Identity.OAuth)
	if password == "" {
		password = anonymousToken
	}
	c.session.setUsername(username)

	c.log.Info("Sending authentication to server..")
	c.events.emitLogon()

	_ = c.write("CAP REQ :twitch.tv/tags twitch.tv/commands twitch.tv/membership")
	_ = c.write("PASS " + password)
	_ = c.write("NICK " + username)
	_ = c.write(fmt.Sprintf("USER %s 8 * :%s", username, username))

	connCh := c.waiter.register("connect", connectTimeout)
	go c.readLoop(ws)

	if _, err := await(connCh); err != nil {
		if errors.Is(err, ErrNoResponse) {
			// login never confirmed; tear the socket down so the close
			// handler can decide about reconnection
			_ = ws.Close()
		}
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

func (c *Client) dialer() *websocket.Dialer {
	d := &websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		Subprotocols:     []string{"irc"},
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if p := c.cfg.Connection.Proxy; p != nil {
		socks, err := proxy.SOCKS5("tcp", fmt.Sprintf("%s:%d", p.Address, p.Port), nil, proxy.Direct)
		if err == nil {
			d.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return socks.Dial(network, addr)
			}
		} else {
			c.log.Error("Failed to build SOCKS5 dialer, connecting directly", err)
		}
	}
	return d
}

// readLoop is the single inbound-processing context of the connection.
func (c *Client) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.onClose()
			return
		}

		for _, line := range strings.Split(string(data), "\r\n") {
			if line = strings.TrimRight(line, "\r\n "); line == "" {
				continue
			}
			msg, perr := parseLine(line)
			if perr != nil {
				c.log.Warn("Dropping malformed line", "line", line, "error", perr.Error())
				continue
			}
			c.handleMessage(msg)
		}
	}
}

// onClose is the one teardown path, reached whenever the read loop exits.
func (c *Client) onClose() {
	c.stopKeepalive()

	loggedIn := c.session.LoggedIn()
	c.session.reset()

	c.mu.Lock()
	c.queue.stop()
	wasCalled := c.wasCloseCalled
	c.wasCloseCalled = false
	reason := c.reason
	c.reason = ""
	if reason == "" {
		if !loggedIn && !wasCalled {
			reason = "Unable to connect."
		} else {
			reason = "Connection closed."
		}
	}
	c.ws = nil
	c.state = Disconnected
	recEnabled := c.reconnectEnabled
	c.mu.Unlock()

	c.waiter.reject("connect", errors.New(reason))
	if wasCalled {
		c.log.Info(reason)
		c.waiter.resolve("disconnect", nil)
	}
	c.waiter.reset(ErrDisconnected)

	metrics.ConnectionUp.Set(0)
	metrics.JoinedChannels.Set(0)
	c.events.emitDisconnected(reason)

	if !wasCalled && recEnabled {
		c.scheduleReconnect()
	}
}

// scheduleReconnect arms exactly one pending reconnect attempt, respecting
// the attempt cap.
func (c *Client) scheduleReconnect() {
	conn := &c.cfg.Connection

	c.mu.Lock()
	if conn.MaxReconnectAttempts >= 0 && c.reconnections >= conn.MaxReconnectAttempts {
		noted := c.maxReconNoted
		c.maxReconNoted = true
		c.mu.Unlock()
		if !noted {
			c.log.Error("Maximum reconnection attempts reached.", nil)
			c.events.emitMaxReconnect()
		}
		return
	}
	if c.reconnecting {
		c.mu.Unlock()
		return
	}
	c.reconnecting = true
	c.reconnections++
	delay := c.reconnectTimer
	c.mu.Unlock()

	metrics.ReconnectsTotal.Inc()
	c.log.Warn(fmt.Sprintf("Reconnecting in %s..", delay.Round(time.Millisecond)))
	c.events.emitReconnect()

	time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.reconnecting = false
		c.mu.Unlock()
		if err := c.Connect(); err != nil {
			c.log.Error("Reconnect attempt failed", err)
		}
	})
}

// loginSuccess runs on the server's "connected" numeric: reset the backoff,
// start the keepalive cycle and pace out the channel joins.
func (c *Client) loginSuccess() {
	conn := &c.cfg.Connection

	c.session.setLoggedIn(true)

	c.mu.Lock()
	c.reconnections = 0
	c.reconnectTimer = time.Duration(conn.ReconnectIntervalMs) * time.Millisecond
	c.maxReconNoted = false
	server, port := c.server, c.port
	configured := append([]string(nil), c.channels...)

	c.queue.stop()
	c.queue = newJoinQueue(time.Duration(conn.JoinIntervalMs) * time.Millisecond)
	queue := c.queue
	c.mu.Unlock()

	c.log.Info("Connected to server.")
	metrics.ConnectionUp.Set(1)

	c.waiter.resolve("connect", nil)
	c.events.emitConnected(server, port)
	c.startKeepalive()

	for _, ch := range union(configured, c.session.takeChannels()) {
		channel := ch
		queue.add(func() {
			// the socket may have closed while the queue was draining
			_ = c.write("JOIN " + channel)
		})
	}
	queue.run()
}

func union(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (c *Client) startKeepalive() {
	interval := time.Duration(c.cfg.Connection.PingIntervalMs) * time.Millisecond
	timeout := time.Duration(c.cfg.Connection.TimeoutMs) * time.Millisecond

	stop := make(chan struct{})
	c.mu.Lock()
	c.pingStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.mu.Lock()
				c.latencyAt = time.Now()
				if c.pingTimeout == nil {
					c.pingTimeout = time.AfterFunc(timeout, c.forceClose)
				} else {
					c.pingTimeout.Reset(timeout)
				}
				c.mu.Unlock()
				_ = c.write("PING")
			}
		}
	}()
}

// forceClose tears the socket down after a missed keepalive; the close
// handler then decides about reconnection.
func (c *Client) forceClose() {
	c.mu.Lock()
	ws := c.ws
	c.wasCloseCalled = false
	c.reason = "Ping timeout."
	c.mu.Unlock()

	if ws != nil {
		c.log.Error("Ping timeout.", nil)
		_ = ws.Close()
	}
}

func (c *Client) stopKeepalive() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pingStop != nil {
		close(c.pingStop)
		c.pingStop = nil
	}
	if c.pingTimeout != nil {
		c.pingTimeout.Stop()
		c.pingTimeout = nil
	}
}

// pongReceived records the round-trip latency and disarms the keepalive
// timeout.
func (c *Client) pongReceived() time.Duration {
	c.mu.Lock()
	latency := time.Since(c.latencyAt)
	c.latency = latency
	if c.pingTimeout != nil {
		c.pingTimeout.Stop()
	}
	c.mu.Unlock()

	metrics.LatencySeconds.Set(latency.Seconds())
	return latency
}

// promiseDelay sizes command deadlines from the measured latency.
func (c *Client) promiseDelay() time.Duration {
	c.mu.Lock()
	latency := c.latency
	c.mu.Unlock()

	if latency <= 600*time.Millisecond {
		return 600 * time.Millisecond
	}
	return latency + 100*time.Millisecond
}

// disableReconnect marks the connection non-reconnectable, used on fatal
// authentication notices.
func (c *Client) disableReconnect(reason string) {
	c.mu.Lock()
	c.reconnectEnabled = false
	c.wasCloseCalled = false
	c.reason = reason
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		_ = ws.Close()
	}
}

// reconnectRequested handles a server-initiated migration: a graceful
// disconnect and a delayed reconnect that never counts as a failure.
func (c *Client) reconnectRequested() {
	c.mu.Lock()
	delay := c.reconnectTimer
	c.mu.Unlock()

	c.log.Info(fmt.Sprintf("Received RECONNECT request from server, reconnecting in %s..", delay.Round(time.Millisecond)))
	go func() {
		if err := c.Disconnect(); err != nil {
			c.log.Error("Disconnect after RECONNECT request failed", err)
		}
		time.AfterFunc(delay, func() {
			if err := c.Connect(); err != nil {
				c.log.Error("Reconnect after RECONNECT request failed", err)
			}
		})
	}()
}

// Disconnect closes the socket and resolves once the close handler has
// observed the user-initiated flag, so no reconnect is scheduled.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.ws == nil || c.state == Closing {
		c.mu.Unlock()
		return errors.New("cannot disconnect: socket is not opened or connection is already closing")
	}
	c.wasCloseCalled = true
	c.state = Closing
	ws := c.ws
	c.mu.Unlock()

	disCh := c.waiter.register("disconnect", connectTimeout)
	c.log.Info("Disconnecting from server..")
	_ = ws.Close()

	_, err := await(disCh)
	return err
}

func (c *Client) write(line string) error {
	c.mu.Lock()
	ws := c.ws
	state := c.state
	c.mu.Unlock()

	if ws == nil || state != Open {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteMessage(websocket.TextMessage, []byte(line))
}

// ReadyState reports the socket-layer state, not the login state.
func (c *Client) ReadyState() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return "CLOSED"
	}
	return c.state.String()
}

func (c *Client) Username() string { return c.session.Username() }

func (c *Client) Channels() []string { return c.session.Channels() }

// IsMod answers from local moderator bookkeeping, never from the network.
func (c *Client) IsMod(channel, username string) bool {
	return c.session.IsMod(channel, username)
}

// CurrentLatency returns the last measured keepalive round trip.
func (c *Client) CurrentLatency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}
