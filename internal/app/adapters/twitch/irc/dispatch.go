package irc

import (
	"fmt"
	"strings"

	"twitchchat/internal/app/adapters/metrics"
	"twitchchat/internal/app/domain/ident"
)

// handleMessage routes one decoded line by its origin class. It runs on the
// read loop, so handlers observe messages in arrival order.
func (c *Client) handleMessage(msg *Message) {
	c.events.emitRaw(msg)

	switch msg.Prefix {
	case "":
		c.handleNoPrefix(msg)
	case "tmi.twitch.tv":
		c.handleServer(msg)
	case "jtv":
		c.handleJtv(msg)
	default:
		c.handleUser(msg)
	}
}

func (c *Client) handleNoPrefix(msg *Message) {
	switch msg.Command {
	case "PING":
		c.events.emitPing()
		_ = c.write("PONG")
	case "PONG":
		latency := c.pongReceived()
		c.events.emitPong(latency)
		c.waiter.resolve("ping", latency)
	default:
		c.log.Warn("Could not parse message with no prefix", "raw", msg.Raw)
	}
}

func (c *Client) handleServer(msg *Message) {
	channel := msg.Channel()

	switch msg.Command {
	case "002", "003", "004", "375", "376", "CAP":
		// rest of the login greeting, nothing to act on

	case "001":
		if len(msg.Params) > 0 {
			c.session.setUsername(msg.Params[0])
		}

	case "372":
		c.loginSuccess()

	case "NOTICE":
		c.handleNotice(msg)

	case "USERNOTICE":
		c.handleUsernotice(msg)

	case "ROOMSTATE":
		c.handleRoomstate(msg)

	case "USERSTATE":
		c.handleUserstate(msg)

	case "GLOBALUSERSTATE":
		c.session.setGlobalUserstate(msg.Tags)
		if sets, ok := msg.Tags["emote-sets"]; ok {
			if s, ok := sets.(string); ok {
				c.updateEmoteSets(s)
			}
		}

	case "CLEARCHAT":
		c.handleClearchat(msg)

	case "CLEARMSG":
		if len(msg.Params) > 1 {
			username := msg.TagString("login")
			deleted := msg.TagString("message")
			msg.Tags["message-type"] = "messageremoved"
			c.log.Info(fmt.Sprintf("[%s] %s's message has been removed.", channel, username))
			c.events.emitMessageRemoved(channel, username, deleted, Userstate(msg.Tags))
		}

	case "HOSTTARGET":
		c.handleHosttarget(msg)

	case "RECONNECT":
		c.reconnectRequested()

	case "SERVERCHANGE":
		// no payload worth surfacing

	case "421":
		c.log.Warn("Unknown command sent to server", "raw", msg.Raw)

	default:
		c.log.Warn("Could not parse message from server", "raw", msg.Raw)
	}
}

// handleRoomstate confirms pending joins and, for partial updates, maps the
// slow and followers-only sentinels onto mode events.
func (c *Client) handleRoomstate(msg *Message) {
	channel := msg.Channel()

	// a ROOMSTATE for the channel being joined confirms the join
	if c.session.LastJoined() == channel {
		c.waiter.resolve("join "+channel, channel)
	}

	msg.Tags["channel"] = channel
	c.events.emitRoomstate(channel, Userstate(msg.Tags))

	// the full snapshot on join carries subs-only; mode changes arrive as
	// partial updates without it
	if _, full := msg.Tags["subs-only"]; full {
		return
	}

	if v, ok := msg.Tags["slow"]; ok {
		if b, isBool := v.(bool); isBool && !b {
			c.log.Info(fmt.Sprintf("[%s] The room is no longer in slow mode.", channel))
			c.events.emitSlowMode(channel, false, 0)
			c.waiter.resolve("slowoff "+channel, nil)
		} else {
			seconds := msg.TagInt("slow")
			c.log.Info(fmt.Sprintf("[%s] The room is now in slow mode.", channel))
			c.events.emitSlowMode(channel, true, seconds)
			c.waiter.resolve("slow "+channel, nil)
		}
	}

	if v, ok := msg.Tags["followers-only"]; ok {
		if s, isString := v.(string); isString && s == "-1" {
			c.log.Info(fmt.Sprintf("[%s] The room is no longer in followers-only mode.", channel))
			c.events.emitFollowersMode(channel, false, 0)
			c.waiter.resolve("followersoff "+channel, nil)
		} else {
			// a coerced false means enabled with no minimum duration
			minutes := msg.TagInt("followers-only")
			c.log.Info(fmt.Sprintf("[%s] The room is now in followers-only mode.", channel))
			c.events.emitFollowersMode(channel, true, minutes)
			c.waiter.resolve("followers "+channel, nil)
		}
	}
}

func (c *Client) handleUserstate(msg *Message) {
	channel := msg.Channel()
	username := c.session.Username()
	msg.Tags["username"] = username

	if msg.TagString("user-type") == "mod" {
		c.session.addModerator(channel, username)
	}

	// the first USERSTATE for a channel is the self-join confirmation for
	// an authenticated identity
	if !ident.IsJustinfan(username) && !c.session.hasUserstate(channel) {
		c.session.setLastJoined(channel)
		c.session.addChannel(channel)
		c.log.Info(fmt.Sprintf("Joined %s", channel))
		metrics.JoinedChannels.Set(float64(len(c.session.Channels())))
		c.events.emitJoin(channel, ident.Username(username), true)
	}

	if sets := msg.TagString("emote-sets"); sets != "" && sets != c.session.EmoteSets() {
		c.updateEmoteSets(sets)
	}

	c.session.setUserstate(channel, msg.Tags)
}

func (c *Client) handleClearchat(msg *Message) {
	channel := msg.Channel()

	if len(msg.Params) > 1 {
		username := msg.Text()
		duration := msg.TagString("ban-duration")
		if duration == "" {
			c.log.Info(fmt.Sprintf("[%s] %s has been banned.", channel, username))
			c.events.emitBan(channel, username, msg.TagString("ban-reason"))
		} else {
			seconds := msg.TagInt("ban-duration")
			c.log.Info(fmt.Sprintf("[%s] %s has been timed out for %d seconds.", channel, username, seconds))
			c.events.emitTimeout(channel, username, msg.TagString("ban-reason"), seconds)
		}
		return
	}

	c.log.Info(fmt.Sprintf("[%s] Chat was cleared by a moderator.", channel))
	c.events.emitClearChat(channel)
	c.waiter.resolve("clear "+channel, nil)
}

func (c *Client) handleHosttarget(msg *Message) {
	channel := msg.Channel()
	parts := strings.SplitN(msg.Text(), " ", 2)
	viewers := 0
	if len(parts) > 1 {
		viewers = ident.ExtractNumber(parts[1])
	}

	if parts[0] == "-" {
		c.log.Info(fmt.Sprintf("[%s] Exited host mode.", channel))
		c.events.emitUnhost(channel, viewers)
		c.waiter.resolve("unhost "+channel, nil)
	} else {
		c.log.Info(fmt.Sprintf("[%s] Now hosting %s for %d viewer(s).", channel, parts[0], viewers))
		c.events.emitHosting(channel, parts[0], viewers)
	}
}

// handleJtv covers the legacy jtv origin, which still carries moderator
// grants.
func (c *Client) handleJtv(msg *Message) {
	if msg.Command != "MODE" || len(msg.Params) < 3 {
		return
	}

	channel := msg.Params[0]
	target := msg.Params[2]
	switch msg.Params[1] {
	case "+o":
		c.session.addModerator(channel, target)
		c.events.emitMod(channel, target)
	case "-o":
		c.session.removeModerator(channel, target)
		c.events.emitUnmod(channel, target)
	}
}

func (c *Client) handleUser(msg *Message) {
	channel := msg.Channel()
	nick := msg.Nick()

	switch msg.Command {
	case "353":
		if len(msg.Params) >= 4 {
			c.events.emitNames(msg.Params[2], strings.Fields(msg.Params[3]))
		}

	case "366":
		// end of names list

	case "JOIN":
		c.handleJoin(channel, nick)

	case "PART":
		c.handlePart(channel, nick)

	case "WHISPER":
		c.handleWhisper(msg, nick)

	case "PRIVMSG":
		c.handlePrivmsg(msg, channel, nick)

	default:
		c.log.Warn("Could not parse message", "raw", msg.Raw)
	}
}

func (c *Client) handleJoin(channel, nick string) {
	self := nick == ident.Username(c.session.Username())

	// an anonymous identity gets no USERSTATE, so its own JOIN echo is the
	// join confirmation
	if self && ident.IsJustinfan(nick) {
		c.session.setLastJoined(channel)
		c.session.addChannel(channel)
		c.log.Info(fmt.Sprintf("Joined %s", channel))
		metrics.JoinedChannels.Set(float64(len(c.session.Channels())))
		c.waiter.resolve("join "+channel, channel)
		c.events.emitJoin(channel, nick, true)
		return
	}

	if !self {
		c.events.emitJoin(channel, nick, false)
	}
}

func (c *Client) handlePart(channel, nick string) {
	self := nick == ident.Username(c.session.Username())

	if self {
		c.session.dropUserstate(channel)
		c.session.removeChannel(channel)
		c.log.Info(fmt.Sprintf("Left %s", channel))
		metrics.JoinedChannels.Set(float64(len(c.session.Channels())))
		c.waiter.resolve("part "+channel, channel)
	}
	c.events.emitPart(channel, nick, self)
}

func (c *Client) handleWhisper(msg *Message, nick string) {
	text := msg.Text()
	c.log.Info(fmt.Sprintf("[WHISPER] <%s>: %s", nick, text))

	if _, ok := msg.Tags["username"]; !ok {
		msg.Tags["username"] = nick
	}
	msg.Tags["message-type"] = "whisper"

	metrics.MessagesTotal.WithLabelValues("whisper").Inc()
	from := ident.Channel(msg.TagString("username"))
	c.events.emitWhisper(from, Userstate(msg.Tags), text, false)
}

func (c *Client) handlePrivmsg(msg *Message, channel, nick string) {
	text := msg.Text()
	msg.Tags["username"] = nick

	// host announcements arrive as plain text from the jtv user
	if nick == "jtv" {
		name := ident.Username(strings.SplitN(text, " ", 2)[0])
		auto := strings.Contains(text, "auto")
		switch {
		case strings.Contains(text, "hosting you for"):
			count := ident.ExtractNumber(text)
			c.events.emitHosted(channel, name, count, auto)
		case strings.Contains(text, "hosting you"):
			c.events.emitHosted(channel, name, 0, auto)
		}
		return
	}

	// the ACTION envelope wins over a bits tag, so a /me cheer is an action
	if action, ok := ident.ActionText(text); ok {
		msg.Tags["message-type"] = "action"
		metrics.MessagesTotal.WithLabelValues("action").Inc()
		c.log.Debug(fmt.Sprintf("[%s] *<%s>: %s", channel, nick, action))
		c.events.emitAction(channel, Userstate(msg.Tags), action, false)
		return
	}

	if _, ok := msg.Tags["bits"]; ok {
		msg.Tags["message-type"] = "cheer"
		metrics.MessagesTotal.WithLabelValues("cheer").Inc()
		c.events.emitCheer(channel, Userstate(msg.Tags), text)
		return
	}

	msg.Tags["message-type"] = "chat"
	metrics.MessagesTotal.WithLabelValues("chat").Inc()
	c.log.Debug(fmt.Sprintf("[%s] <%s>: %s", channel, nick, text))
	c.events.emitChat(channel, Userstate(msg.Tags), text, false)
}

// updateEmoteSets records the new set list and hands it to the catalog.
func (c *Client) updateEmoteSets(sets string) {
	c.session.setEmoteSets(sets)
	if c.emotes != nil {
		c.emotes.Refresh(sets)
	}
}
