package irc

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain/ident"
)

const (
	messageLimit = 500
	chunkDelay   = 350 * time.Millisecond
)

// exec sends one command and blocks until the matching acknowledgement,
// the latency-sized deadline, or a dropped connection. An empty channel
// sends the command as a raw line.
func (c *Client) exec(channel, command, key string) (any, error) {
	line := command
	if channel != "" {
		// channel commands ride on PRIVMSG, which the server only honors
		// for a confirmed login
		if !c.session.LoggedIn() {
			return nil, ErrNotConnected
		}
		line = "PRIVMSG " + channel + " :" + command
		c.log.Info(fmt.Sprintf("[%s] Executing command: %s", channel, command))
	} else {
		c.log.Info("Executing command: " + command)
	}

	// register before writing so a fast acknowledgement cannot be missed
	op := c.waiter.register(key, c.promiseDelay())
	if err := c.write(line); err != nil {
		// a local write error concerns this caller only, not the other
		// operations pending under the same key
		c.waiter.fail(key, op, err)
		_, _ = await(op)
		return nil, err
	}

	payload, err := await(op)
	if errors.Is(err, ErrNoResponse) || errors.Is(err, ErrDisconnected) {
		metrics.CommandFailuresTotal.WithLabelValues(strings.SplitN(key, " ", 2)[0]).Inc()
	}
	return payload, err
}

func (c *Client) execOnly(channel, command, key string) error {
	_, err := c.exec(channel, command, key)
	return err
}

// Join asks for a channel and blocks until the server confirms membership.
func (c *Client) Join(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly("", "JOIN "+channel, "join "+channel)
}

// Part leaves a channel and blocks until the server echoes the departure.
func (c *Client) Part(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly("", "PART "+channel, "part "+channel)
}

// Ping measures one round trip to the server.
func (c *Client) Ping() (time.Duration, error) {
	c.mu.Lock()
	c.latencyAt = time.Now()
	c.mu.Unlock()

	payload, err := c.exec("", "PING", "ping")
	if err != nil {
		return 0, err
	}
	latency, _ := payload.(time.Duration)
	return latency, nil
}

// Raw sends a line verbatim, fire and forget.
func (c *Client) Raw(line string) error {
	return c.write(line)
}

// Say sends chat text. Slash and dot prefixed input is relayed as a command
// instead, except for /me which stays a message.
func (c *Client) Say(channel, message string) error {
	channel = ident.Channel(channel)

	if (strings.HasPrefix(message, ".") && !strings.HasPrefix(message, "..")) ||
		strings.HasPrefix(message, "/") || strings.HasPrefix(message, "\\") {
		if len(message) >= 4 && message[1:4] == "me " {
			return c.sendMessage(channel, "\u0001ACTION "+message[4:]+"\u0001")
		}
		if !c.session.LoggedIn() {
			return ErrNotConnected
		}
		c.log.Info(fmt.Sprintf("[%s] Executing command: %s", channel, message))
		return c.write("PRIVMSG " + channel + " :" + message)
	}
	return c.sendMessage(channel, message)
}

// sendMessage delivers chat text with the long-line split, then emits the
// local echo with emote annotations, since the server never echoes our own
// messages back.
func (c *Client) sendMessage(channel, message string) error {
	username := c.session.Username()
	if ident.IsJustinfan(username) {
		return ErrAnonymous
	}
	// an open socket is not enough; chat sent before the login confirmation
	// is silently discarded by the server
	if !c.session.LoggedIn() {
		return ErrNotConnected
	}

	if len(message) >= messageLimit {
		var rest string
		message, rest = ident.SplitLine(message, messageLimit)
		remainder := rest
		time.AfterFunc(chunkDelay, func() {
			if err := c.sendMessage(channel, remainder); err != nil {
				c.log.Error("Failed to send message chunk", err, "channel", channel)
			}
		})
	}

	if err := c.write("PRIVMSG " + channel + " :" + message); err != nil {
		return err
	}
	metrics.MessagesSentTotal.WithLabelValues(channel).Inc()

	userstate := Userstate{}
	for k, v := range c.session.Userstate(channel) {
		userstate[k] = v
	}
	userstate["username"] = username

	if c.emotes != nil {
		if spans := findEmotes(message, c.emotes.Snapshot()); len(spans) > 0 {
			userstate["emotes"] = spans
			userstate["emotes-raw"] = encodeEmotes(spans)
		}
	}

	if action, ok := ident.ActionText(message); ok {
		userstate["message-type"] = "action"
		c.log.Info(fmt.Sprintf("[%s] *<%s>: %s", channel, username, action))
		c.events.emitAction(channel, userstate, action, true)
	} else {
		userstate["message-type"] = "chat"
		c.log.Info(fmt.Sprintf("[%s] <%s>: %s", channel, username, message))
		c.events.emitChat(channel, userstate, message, true)
	}
	return nil
}

// Whisper sends a private message. The server only acknowledges failures,
// so a silent deadline counts as delivery.
func (c *Client) Whisper(username, message string) error {
	username = ident.Username(username)
	if username == ident.Username(c.session.Username()) {
		return errors.New("cannot send a whisper to the same account")
	}

	// whispers ride on a placeholder channel
	const channel = "#jtv"
	_, err := c.exec(channel, fmt.Sprintf("/w %s %s", username, message), "whisper "+channel)
	if errors.Is(err, ErrNoResponse) {
		userstate := Userstate{
			"message-type": "whisper",
			"username":     ident.Username(c.session.Username()),
		}
		c.events.emitWhisper(ident.Channel(username), userstate, message, true)
		return nil
	}
	return err
}

func (c *Client) Ban(channel, username, reason string) error {
	channel = ident.Channel(channel)
	username = ident.Username(username)
	return c.execOnly(channel, strings.TrimSpace(fmt.Sprintf("/ban %s %s", username, reason)), "ban "+channel)
}

func (c *Client) Unban(channel, username string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/unban "+ident.Username(username), "unban "+channel)
}

func (c *Client) Timeout(channel, username string, seconds int, reason string) error {
	channel = ident.Channel(channel)
	if seconds <= 0 {
		seconds = 300
	}
	command := strings.TrimSpace(fmt.Sprintf("/timeout %s %d %s", ident.Username(username), seconds, reason))
	return c.execOnly(channel, command, "timeout "+channel)
}

// Untimeout shares the unban acknowledgement, since cancelling a timeout is
// an unban on the server side.
func (c *Client) Untimeout(channel, username string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/untimeout "+ident.Username(username), "unban "+channel)
}

func (c *Client) DeleteMessage(channel, messageID string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/delete "+messageID, "deletemessage "+channel)
}

func (c *Client) Mod(channel, username string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/mod "+ident.Username(username), "mod "+channel)
}

func (c *Client) Unmod(channel, username string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/unmod "+ident.Username(username), "unmod "+channel)
}

// Mods lists the channel moderators and folds them into the local lookup.
func (c *Client) Mods(channel string) ([]string, error) {
	channel = ident.Channel(channel)
	payload, err := c.exec(channel, "/mods", "mods "+channel)
	if err != nil {
		return nil, err
	}
	mods, _ := payload.([]string)
	for _, username := range mods {
		c.session.addModerator(channel, username)
	}
	return mods, nil
}

func (c *Client) Clear(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/clear", "clear "+channel)
}

func (c *Client) Color(channel, color string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/color "+color, "color "+channel)
}

// Commercial runs an ad break, rounding the length to what the server
// accepts.
func (c *Client) Commercial(channel string, seconds int) (int, error) {
	channel = ident.Channel(channel)
	if seconds <= 0 {
		seconds = 30
	}
	if err := c.execOnly(channel, fmt.Sprintf("/commercial %d", seconds), "commercial "+channel); err != nil {
		return 0, err
	}
	return seconds, nil
}

// Host returns how many host commands remain for the half hour.
func (c *Client) Host(channel, target string) (int, error) {
	channel = ident.Channel(channel)
	payload, err := c.exec(channel, "/host "+ident.Username(target), "host "+channel)
	if err != nil {
		return 0, err
	}
	remaining, _ := payload.(int)
	return remaining, nil
}

func (c *Client) Unhost(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/unhost", "unhost "+channel)
}

func (c *Client) Slow(channel string, seconds int) error {
	channel = ident.Channel(channel)
	if seconds <= 0 {
		seconds = 300
	}
	return c.execOnly(channel, fmt.Sprintf("/slow %d", seconds), "slow "+channel)
}

func (c *Client) SlowOff(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/slowoff", "slowoff "+channel)
}

func (c *Client) FollowersOnly(channel string, minutes int) error {
	channel = ident.Channel(channel)
	if minutes < 0 {
		minutes = 30
	}
	return c.execOnly(channel, fmt.Sprintf("/followers %d", minutes), "followers "+channel)
}

func (c *Client) FollowersOnlyOff(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/followersoff", "followersoff "+channel)
}

func (c *Client) Subscribers(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/subscribers", "subscribers "+channel)
}

func (c *Client) SubscribersOff(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/subscribersoff", "subscribersoff "+channel)
}

func (c *Client) EmoteOnly(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/emoteonly", "emoteonly "+channel)
}

func (c *Client) EmoteOnlyOff(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/emoteonlyoff", "emoteonlyoff "+channel)
}

func (c *Client) R9kBeta(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/r9kbeta", "r9kbeta "+channel)
}

func (c *Client) R9kBetaOff(channel string) error {
	channel = ident.Channel(channel)
	return c.execOnly(channel, "/r9kbetaoff", "r9kbetaoff "+channel)
}
