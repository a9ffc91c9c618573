package irc

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	srv   *httptest.Server
	conns chan *testConn
}

type testConn struct {
	ws    *websocket.Conn
	lines chan string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{conns: make(chan *testConn, 4)}
	upgrader := websocket.Upgrader{
		Subprotocols: []string{"irc"},
		CheckOrigin:  func(*http.Request) bool { return true },
	}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := &testConn{ws: ws, lines: make(chan string, 64)}
		s.conns <- conn
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				close(conn.lines)
				return
			}
			for _, line := range strings.Split(string(data), "\r\n") {
				if line != "" {
					conn.lines <- line
				}
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *testServer) accept(t *testing.T) *testConn {
	t.Helper()
	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no incoming connection")
		return nil
	}
}

// expect discards lines until one with the given prefix arrives.
func (c *testConn) expect(t *testing.T, prefix string) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				t.Fatalf("connection closed while waiting for %q", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", prefix)
		}
	}
}

func (c *testConn) send(t *testing.T, line string) {
	t.Helper()
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line+"\r\n")); err != nil {
		t.Fatalf("server write failed: %v", err)
	}
}

// serveLogin walks one connection through the handshake and confirms the
// login.
func (c *testConn) serveLogin(t *testing.T) {
	t.Helper()
	c.expect(t, "CAP REQ :twitch.tv/tags twitch.tv/commands twitch.tv/membership")
	c.expect(t, "PASS ")
	nick := strings.TrimPrefix(c.expect(t, "NICK "), "NICK ")
	c.expect(t, "USER ")
	c.send(t, ":tmi.twitch.tv 001 "+nick+" :Welcome, GLHF!")
	c.send(t, ":tmi.twitch.tv 372 "+nick+" :You are in a maze of twisty passages, all alike.")
}

func newDialableClient(t *testing.T, s *testServer) *Client {
	t.Helper()

	c := newTestClient(t)
	u, err := url.Parse(s.srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	c.cfg.Connection.Server = u.Hostname()
	c.cfg.Connection.Port = port
	c.cfg.Connection.Reconnect = true
	c.cfg.Identity.Username = "botuser"
	c.cfg.Identity.OAuth = "oauth:secret"
	return c
}

func TestClient_ConnectHandshake(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)

	var mu sync.Mutex
	var order []string
	c.OnConnecting(func(server string, port int) { mu.Lock(); order = append(order, "connecting"); mu.Unlock() })
	c.OnLogon(func() { mu.Lock(); order = append(order, "logon"); mu.Unlock() })
	c.OnConnected(func(server string, port int) { mu.Lock(); order = append(order, "connected"); mu.Unlock() })

	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
	}()

	require.NoError(t, c.Connect())
	assert.Equal(t, "OPEN", c.ReadyState())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"connecting", "logon", "connected"}, order)
}

func TestClient_ConnectWhileConnectedFails(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)

	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
	}()
	require.NoError(t, c.Connect())

	assert.Error(t, c.Connect())
}

func TestClient_DisconnectIsFinal(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.ReconnectIntervalMs = 30

	var mu sync.Mutex
	var reasons []string
	c.OnDisconnected(func(reason string) { mu.Lock(); reasons = append(reasons, reason); mu.Unlock() })

	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
	}()
	require.NoError(t, c.Connect())

	require.NoError(t, c.Disconnect())
	assert.Equal(t, "CLOSED", c.ReadyState())

	// a user disconnect must not schedule a reconnect
	select {
	case <-s.conns:
		t.Fatal("client reconnected after an explicit disconnect")
	case <-time.After(200 * time.Millisecond):
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Connection closed."}, reasons)
}

func TestClient_DroppedConnectionReconnectsAndRejoins(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.ReconnectIntervalMs = 30
	c.reconnectTimer = 30 * time.Millisecond
	c.channels = []string{"#somechannel"}

	connected := make(chan struct{}, 4)
	c.OnConnected(func(server string, port int) { connected <- struct{}{} })

	firstCh := make(chan *testConn, 1)
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		firstCh <- conn
	}()
	require.NoError(t, c.Connect())
	<-connected

	first := <-firstCh
	first.expect(t, "JOIN #somechannel")

	// drop the connection server-side and wait for the redial
	require.NoError(t, first.ws.Close())

	second := s.accept(t)
	second.serveLogin(t)
	second.expect(t, "JOIN #somechannel")

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not reconnect after the drop")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, 0, c.reconnections, "attempt counter resets on a successful login")
}

func TestClient_DynamicJoinSurvivesReconnect(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.ReconnectIntervalMs = 30
	c.reconnectTimer = 30 * time.Millisecond

	firstCh := make(chan *testConn, 1)
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		firstCh <- conn
	}()
	require.NoError(t, c.Connect())
	first := <-firstCh

	// join a channel that is not in the configured list and confirm it
	joinErr := make(chan error, 1)
	go func() { joinErr <- c.Join("adhoc") }()
	first.expect(t, "JOIN #adhoc")
	first.send(t, "@mod=0;emote-sets=0 :tmi.twitch.tv USERSTATE #adhoc")
	first.send(t, "@room-id=1 :tmi.twitch.tv ROOMSTATE #adhoc")
	require.NoError(t, <-joinErr)
	assert.Equal(t, []string{"#adhoc"}, c.Channels())

	require.NoError(t, first.ws.Close())

	second := s.accept(t)
	second.serveLogin(t)
	second.expect(t, "JOIN #adhoc")
}

func TestClient_PingRoundTrip(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)

	firstCh := make(chan *testConn, 1)
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		firstCh <- conn
	}()
	require.NoError(t, c.Connect())
	conn := <-firstCh

	pingErr := make(chan error, 1)
	var latency time.Duration
	go func() {
		var err error
		latency, err = c.Ping()
		pingErr <- err
	}()
	conn.expect(t, "PING")
	conn.send(t, "PONG :tmi.twitch.tv")

	require.NoError(t, <-pingErr)
	assert.Greater(t, latency, time.Duration(0))
}

func TestClient_ServerPingIsAnswered(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)

	firstCh := make(chan *testConn, 1)
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		firstCh <- conn
	}()
	require.NoError(t, c.Connect())
	conn := <-firstCh

	conn.send(t, "PING :tmi.twitch.tv")
	conn.expect(t, "PONG")
}

func TestClient_PingTimeoutForcesClose(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.Reconnect = false
	c.reconnectEnabled = false
	c.cfg.Connection.PingIntervalMs = 30
	c.cfg.Connection.TimeoutMs = 50

	reasons := make(chan string, 4)
	c.OnDisconnected(func(reason string) { reasons <- reason })

	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		// never answer the keepalive PING
	}()
	require.NoError(t, c.Connect())

	select {
	case reason := <-reasons:
		assert.Equal(t, "Ping timeout.", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("missing PONG did not close the connection")
	}
	assert.Equal(t, "CLOSED", c.ReadyState())
}

func TestClient_AuthFailureDisablesReconnect(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.ReconnectIntervalMs = 30

	go func() {
		conn := s.accept(t)
		conn.expect(t, "NICK ")
		conn.send(t, ":tmi.twitch.tv NOTICE * :Login authentication failed")
	}()

	err := c.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Login authentication failed")

	select {
	case <-s.conns:
		t.Fatal("client retried after an authentication failure")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClient_ReconnectAttemptsAreCapped(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.ReconnectIntervalMs = 20
	c.cfg.Connection.MaxReconnectAttempts = 1
	c.reconnectTimer = 20 * time.Millisecond

	maxed := make(chan struct{}, 4)
	c.OnMaxReconnect(func() { maxed <- struct{}{} })

	firstCh := make(chan *testConn, 1)
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		firstCh <- conn
	}()
	require.NoError(t, c.Connect())
	first := <-firstCh

	// no server to come back to: the one retry fails, then the cap is hit
	s.srv.Close()
	require.NoError(t, first.ws.Close())

	select {
	case <-maxed:
	case <-time.After(3 * time.Second):
		t.Fatal("cap on reconnect attempts was never reported")
	}

	select {
	case <-maxed:
		t.Fatal("cap reported more than once")
	case <-time.After(150 * time.Millisecond):
	}
}

// The retry interval advances multiplicatively before each dial, stays at
// the configured ceiling, and falls back to the base on a confirmed login.
func TestClient_ReconnectBackoffGrowsCapsAndResets(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadPort := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.Reconnect = false
	c.reconnectEnabled = false
	c.cfg.Connection.ReconnectIntervalMs = 100
	c.cfg.Connection.MaxReconnectIntervalMs = 250
	c.cfg.Connection.ReconnectDecay = 2.0
	c.reconnectTimer = 100 * time.Millisecond

	livePort := c.cfg.Connection.Port
	c.cfg.Connection.Port = deadPort

	backoff := func() time.Duration {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.reconnectTimer
	}

	require.Error(t, c.Connect())
	assert.Equal(t, 200*time.Millisecond, backoff())

	require.Error(t, c.Connect())
	assert.Equal(t, 250*time.Millisecond, backoff(), "growth stops at the ceiling")

	require.Error(t, c.Connect())
	assert.Equal(t, 250*time.Millisecond, backoff())

	c.cfg.Connection.Port = livePort
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
	}()
	require.NoError(t, c.Connect())
	assert.Equal(t, 100*time.Millisecond, backoff(), "confirmed login resets the interval")
}

func TestClient_SayDeliversAndEchoes(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)

	firstCh := make(chan *testConn, 1)
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		firstCh <- conn
	}()
	require.NoError(t, c.Connect())
	conn := <-firstCh

	echoed := make(chan string, 1)
	c.OnChat(func(channel string, userstate Userstate, text string, self bool) {
		if self {
			echoed <- text
		}
	})

	require.NoError(t, c.Say("somechannel", "hello there"))
	assert.Equal(t, "PRIVMSG #somechannel :hello there", conn.expect(t, "PRIVMSG"))
	assert.Equal(t, "hello there", <-echoed)
}

func TestClient_CommandWithoutConnectionFails(t *testing.T) {
	c := newTestClient(t)

	assert.ErrorIs(t, c.Say("somechannel", "hello"), ErrNotConnected)
	_, err := c.Ping()
	assert.ErrorIs(t, err, ErrNotConnected)
}
