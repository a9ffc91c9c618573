package irc

import (
	"errors"
	"fmt"
	"strings"

	"twitchchat/internal/app/adapters/metrics"
)

// handleNotice maps server NOTICE msg-ids onto command outcomes and events.
// Unknown msg-ids with an authentication failure text tear the connection
// down without a reconnect.
func (c *Client) handleNotice(msg *Message) {
	channel := msg.Channel()
	msgID := msg.MsgID()
	text := msg.Text()

	if msgID != "" {
		metrics.NoticesTotal.WithLabelValues(msgID).Inc()
	}

	notify := func() { c.events.emitNotice(channel, msgID, text) }
	failure := func(command string) {
		c.log.Info(fmt.Sprintf("[%s] %s", channel, text))
		notify()
		metrics.CommandFailuresTotal.WithLabelValues(command).Inc()
		c.waiter.reject(command+" "+channel, errors.New(msgID))
	}
	success := func(command string) {
		c.log.Info(fmt.Sprintf("[%s] %s", channel, text))
		notify()
		c.waiter.resolve(command+" "+channel, nil)
	}

	switch msgID {
	case "subs_on":
		c.log.Info(fmt.Sprintf("[%s] This room is now in subscribers-only mode.", channel))
		c.events.emitSubscribers(channel, true)
		c.waiter.resolve("subscribers "+channel, nil)

	case "subs_off":
		c.log.Info(fmt.Sprintf("[%s] This room is no longer in subscribers-only mode.", channel))
		c.events.emitSubscribers(channel, false)
		c.waiter.resolve("subscribersoff "+channel, nil)

	case "emote_only_on":
		c.log.Info(fmt.Sprintf("[%s] This room is now in emote-only mode.", channel))
		c.events.emitEmoteOnly(channel, true)
		c.waiter.resolve("emoteonly "+channel, nil)

	case "emote_only_off":
		c.log.Info(fmt.Sprintf("[%s] This room is no longer in emote-only mode.", channel))
		c.events.emitEmoteOnly(channel, false)
		c.waiter.resolve("emoteonlyoff "+channel, nil)

	case "slow_on", "slow_off", "followers_on_zero", "followers_on", "followers_off":
		// ROOMSTATE carries the duration, so these resolve there

	case "r9k_on":
		c.log.Info(fmt.Sprintf("[%s] This room is now in r9k mode.", channel))
		c.events.emitR9kMode(channel, true)
		c.waiter.resolve("r9kbeta "+channel, nil)

	case "r9k_off":
		c.log.Info(fmt.Sprintf("[%s] This room is no longer in r9k mode.", channel))
		c.events.emitR9kMode(channel, false)
		c.waiter.resolve("r9kbetaoff "+channel, nil)

	case "room_mods":
		var mods []string
		if _, list, found := strings.Cut(text, ": "); found {
			for _, name := range strings.Split(strings.ToLower(list), ", ") {
				if name != "" {
					mods = append(mods, name)
				}
			}
		}
		c.waiter.resolve("mods "+channel, mods)

	case "no_mods":
		c.waiter.resolve("mods "+channel, []string(nil))

	case "msg_channel_suspended":
		notify()
		c.waiter.reject("join "+channel, errors.New(msgID))

	case "already_banned", "bad_ban_admin", "bad_ban_broadcaster",
		"bad_ban_global_mod", "bad_ban_self", "bad_ban_staff", "usage_ban":
		failure("ban")

	case "ban_success":
		success("ban")

	case "usage_clear":
		failure("clear")

	case "usage_mods":
		failure("mods")

	case "mod_success":
		success("mod")

	case "usage_mod", "bad_mod_banned", "bad_mod_mod":
		failure("mod")

	case "unmod_success":
		success("unmod")

	case "usage_unmod", "bad_unmod_mod":
		failure("unmod")

	case "color_changed":
		success("color")

	case "usage_color", "turbo_only_color":
		failure("color")

	case "commercial_success":
		success("commercial")

	case "usage_commercial", "bad_commercial_error":
		failure("commercial")

	case "hosts_remaining":
		c.log.Info(fmt.Sprintf("[%s] %s", channel, text))
		notify()
		remaining := 0
		if len(text) > 0 && text[0] >= '0' && text[0] <= '9' {
			remaining = int(text[0] - '0')
		}
		c.waiter.resolve("host "+channel, remaining)

	case "bad_host_hosting", "bad_host_rate_exceeded", "bad_host_error", "usage_host":
		failure("host")

	case "already_r9k_on", "usage_r9k_on":
		failure("r9kbeta")

	case "already_r9k_off", "usage_r9k_off":
		failure("r9kbetaoff")

	case "timeout_success":
		success("timeout")

	case "delete_message_success":
		success("deletemessage")

	case "already_subs_off", "usage_subs_off":
		failure("subscribersoff")

	case "already_subs_on", "usage_subs_on":
		failure("subscribers")

	case "already_emote_only_off", "usage_emote_only_off":
		failure("emoteonlyoff")

	case "already_emote_only_on", "usage_emote_only_on":
		failure("emoteonly")

	case "usage_slow_on":
		failure("slow")

	case "usage_slow_off":
		failure("slowoff")

	case "usage_timeout", "bad_timeout_admin", "bad_timeout_broadcaster",
		"bad_timeout_duration", "bad_timeout_global_mod", "bad_timeout_self",
		"bad_timeout_staff":
		failure("timeout")

	// unban also cancels an active timeout, so both confirm the same key
	case "untimeout_success", "unban_success":
		success("unban")

	case "usage_unban", "bad_unban_no_ban":
		failure("unban")

	case "usage_delete", "bad_delete_message_error",
		"bad_delete_message_broadcaster", "bad_delete_message_mod":
		failure("deletemessage")

	case "usage_unhost", "not_hosting":
		failure("unhost")

	case "whisper_invalid_login", "whisper_invalid_self",
		"whisper_limit_per_min", "whisper_limit_per_sec",
		"whisper_restricted_recipient":
		failure("whisper")

	case "no_permission", "msg_banned":
		c.log.Info(fmt.Sprintf("[%s] %s", channel, text))
		notify()
		err := errors.New(msgID)
		keys := make([]string, 0, len(moderationCommands))
		for _, command := range moderationCommands {
			keys = append(keys, command+" "+channel)
		}
		c.waiter.rejectAll(keys, err)

	case "unrecognized_cmd":
		c.log.Info(fmt.Sprintf("[%s] %s", channel, text))
		notify()

	case "cmds_available", "host_target_went_offline", "msg_censored_broadcaster",
		"msg_duplicate", "msg_emoteonly", "msg_verified_email", "msg_ratelimit",
		"msg_subsonly", "msg_timedout", "msg_bad_characters", "msg_channel_blocked",
		"msg_facebook", "msg_followersonly", "msg_followersonly_followed",
		"msg_followersonly_zero", "msg_rejected", "msg_slowmode", "msg_suspended",
		"no_help", "usage_disconnect", "usage_help", "usage_me":
		c.log.Info(fmt.Sprintf("[%s] %s", channel, text))
		notify()

	case "host_on", "host_off":
		// HOSTTARGET carries the viewer count, so these resolve there

	default:
		if isAuthFailure(text) {
			reason := text
			if strings.Contains(text, "Invalid NICK") {
				reason = "Invalid NICK."
			}
			c.log.Error(reason, nil)
			c.disableReconnect(reason)
			return
		}
		c.log.Warn("Could not parse NOTICE from server", "raw", msg.Raw)
	}
}

// moderationCommands are the pending keys a permission error invalidates,
// since the server does not say which command it refused.
var moderationCommands = []string{
	"ban", "clear", "unban", "timeout", "mods", "mod", "unmod",
	"commercial", "host", "unhost", "r9kbeta", "r9kbetaoff",
	"slow", "slowoff", "followers", "followersoff",
	"subscribers", "subscribersoff", "emoteonly", "emoteonlyoff",
	"deletemessage",
}

func isAuthFailure(text string) bool {
	for _, marker := range []string{
		"Login unsuccessful",
		"Login authentication failed",
		"Error logging in",
		"Improperly formatted auth",
		"Invalid NICK",
	} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
