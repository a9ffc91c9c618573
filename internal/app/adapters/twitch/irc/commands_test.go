package irc

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitchchat/internal/app/ports"
)

func loggedInClient(t *testing.T, s *testServer) (*Client, *testConn) {
	t.Helper()

	c := newDialableClient(t, s)
	c.cfg.Connection.Reconnect = false
	c.reconnectEnabled = false

	connCh := make(chan *testConn, 1)
	go func() {
		conn := s.accept(t)
		conn.serveLogin(t)
		connCh <- conn
	}()
	require.NoError(t, c.Connect())
	return c, <-connCh
}

func TestSay_LongMessageIsChunked(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	message := strings.Repeat("all work and no play ", 31) // 651 chars
	require.NoError(t, c.Say("somechannel", message))

	first := strings.TrimPrefix(conn.expect(t, "PRIVMSG #somechannel :"), "PRIVMSG #somechannel :")
	assert.LessOrEqual(t, len(first), messageLimit)

	second := strings.TrimPrefix(conn.expect(t, "PRIVMSG #somechannel :"), "PRIVMSG #somechannel :")
	assert.Equal(t, message, first+" "+second, "nothing is lost across the split")
}

func TestSay_MeBecomesAction(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	acted := make(chan string, 1)
	c.OnAction(func(channel string, userstate Userstate, text string, self bool) {
		if self {
			acted <- text
		}
	})

	require.NoError(t, c.Say("somechannel", "/me waves"))
	line := conn.expect(t, "PRIVMSG #somechannel :")
	assert.Equal(t, "PRIVMSG #somechannel :\u0001ACTION waves\u0001", line)
	assert.Equal(t, "waves", <-acted)
}

func TestSay_SlashCommandIsRelayedVerbatim(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	require.NoError(t, c.Say("somechannel", "/uniquechat"))
	assert.Equal(t, "PRIVMSG #somechannel :/uniquechat", conn.expect(t, "PRIVMSG"))
}

func TestSay_DoubleDotIsPlainChat(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	require.NoError(t, c.Say("somechannel", "..well then"))
	assert.Equal(t, "PRIVMSG #somechannel :..well then", conn.expect(t, "PRIVMSG"))
}

func TestSay_AnonymousIdentityIsRejected(t *testing.T) {
	c := newTestClient(t)
	c.session.setUsername("justinfan12345")

	assert.ErrorIs(t, c.Say("somechannel", "hello"), ErrAnonymous)
}

// An open socket is not enough to chat; the login confirmation has to
// arrive first.
func TestSay_BeforeLoginConfirmationFails(t *testing.T) {
	s := newTestServer(t)
	c := newDialableClient(t, s)
	c.cfg.Connection.Reconnect = false
	c.reconnectEnabled = false

	connectErr := make(chan error, 1)
	go func() { connectErr <- c.Connect() }()

	conn := s.accept(t)
	conn.expect(t, "CAP REQ")
	conn.expect(t, "PASS ")
	nick := strings.TrimPrefix(conn.expect(t, "NICK "), "NICK ")
	conn.expect(t, "USER ")

	// handshake sent, socket open, login not yet confirmed
	assert.Equal(t, "OPEN", c.ReadyState())
	assert.ErrorIs(t, c.Say("somechannel", "too early"), ErrNotConnected)
	assert.ErrorIs(t, c.Say("somechannel", "/uniquechat"), ErrNotConnected)
	assert.ErrorIs(t, c.Ban("somechannel", "spammer", ""), ErrNotConnected)

	conn.send(t, ":tmi.twitch.tv 001 "+nick+" :Welcome, GLHF!")
	conn.send(t, ":tmi.twitch.tv 372 "+nick+" :You are in a maze of twisty passages, all alike.")
	require.NoError(t, <-connectErr)

	require.NoError(t, c.Say("somechannel", "on time"))
	assert.Equal(t, "PRIVMSG #somechannel :on time", conn.expect(t, "PRIVMSG"))
}

func TestSay_EchoCarriesEmoteAnnotations(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)
	c.emotes = &fakeEmotes{catalog: map[string][]ports.Emote{
		"0": {{ID: "25", Code: "Kappa"}},
	}}

	echoed := make(chan Userstate, 1)
	c.OnChat(func(channel string, userstate Userstate, text string, self bool) {
		if self {
			echoed <- userstate
		}
	})

	require.NoError(t, c.Say("somechannel", "Kappa 123"))
	conn.expect(t, "PRIVMSG")

	userstate := <-echoed
	spans, ok := userstate["emotes"].([]EmoteSpan)
	require.True(t, ok)
	require.Len(t, spans, 1)
	assert.Equal(t, "25", spans[0].ID)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 4, spans[0].End)
}

func TestBan_ResolvedByNotice(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	banErr := make(chan error, 1)
	go func() { banErr <- c.Ban("somechannel", "viewer", "spamming") }()

	assert.Equal(t, "PRIVMSG #somechannel :/ban viewer spamming", conn.expect(t, "PRIVMSG"))
	conn.send(t, "@msg-id=ban_success :tmi.twitch.tv NOTICE #somechannel :viewer is now banned from this channel.")
	require.NoError(t, <-banErr)
}

func TestMods_ReturnsParsedList(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	type result struct {
		mods []string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		mods, err := c.Mods("somechannel")
		done <- result{mods, err}
	}()

	conn.expect(t, "PRIVMSG #somechannel :/mods")
	conn.send(t, "@msg-id=room_mods :tmi.twitch.tv NOTICE #somechannel :The moderators of this channel are: Alice, bob")

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, []string{"alice", "bob"}, res.mods)
	assert.True(t, c.IsMod("somechannel", "alice"))
}

func TestUntimeout_ResolvedByUnbanNotice(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	done := make(chan error, 1)
	go func() { done <- c.Untimeout("somechannel", "viewer") }()

	conn.expect(t, "PRIVMSG #somechannel :/untimeout viewer")
	conn.send(t, "@msg-id=untimeout_success :tmi.twitch.tv NOTICE #somechannel :viewer is no longer timed out.")
	require.NoError(t, <-done)
}

func TestCommand_TimesOutWithNoResponse(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	start := time.Now()
	err := c.Ban("somechannel", "viewer", "")
	assert.ErrorIs(t, err, ErrNoResponse)
	assert.GreaterOrEqual(t, time.Since(start), 600*time.Millisecond)

	conn.expect(t, "PRIVMSG") // the command still went out
}

func TestWhisper_ToSelfFails(t *testing.T) {
	s := newTestServer(t)
	c, _ := loggedInClient(t, s)

	assert.Error(t, c.Whisper(c.Username(), "hello me"))
}

func TestWhisper_SilenceCountsAsDelivered(t *testing.T) {
	s := newTestServer(t)
	c, conn := loggedInClient(t, s)

	sent := make(chan string, 1)
	c.OnWhisper(func(from string, userstate Userstate, text string, self bool) {
		if self {
			sent <- text
		}
	})

	require.NoError(t, c.Whisper("friend", "psst"))
	conn.expect(t, "PRIVMSG #jtv :/w friend psst")
	assert.Equal(t, "psst", <-sent)
}
