package irc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notice(t *testing.T, msgID, channel, text string) *Message {
	t.Helper()
	return mustParse(t, "@msg-id="+msgID+" :tmi.twitch.tv NOTICE "+channel+" :"+text)
}

func TestNotice_RoomModeEvents(t *testing.T) {
	tests := []struct {
		name    string
		msgID   string
		key     string
		event   string
		enabled bool
	}{
		{name: "subs_on", msgID: "subs_on", key: "subscribers #channel", event: "subscribers", enabled: true},
		{name: "subs_off", msgID: "subs_off", key: "subscribersoff #channel", event: "subscribers", enabled: false},
		{name: "emote_only_on", msgID: "emote_only_on", key: "emoteonly #channel", event: "emoteonly", enabled: true},
		{name: "emote_only_off", msgID: "emote_only_off", key: "emoteonlyoff #channel", event: "emoteonly", enabled: false},
		{name: "r9k_on", msgID: "r9k_on", key: "r9kbeta #channel", event: "r9k", enabled: true},
		{name: "r9k_off", msgID: "r9k_off", key: "r9kbetaoff #channel", event: "r9k", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)

			var gotEvent string
			var gotEnabled bool
			c.OnSubscribers(func(channel string, enabled bool) { gotEvent, gotEnabled = "subscribers", enabled })
			c.OnEmoteOnly(func(channel string, enabled bool) { gotEvent, gotEnabled = "emoteonly", enabled })
			c.OnR9kMode(func(channel string, enabled bool) { gotEvent, gotEnabled = "r9k", enabled })

			ch := c.waiter.register(tt.key, time.Second)
			c.handleMessage(notice(t, tt.msgID, "#channel", "mode changed"))

			_, err := await(ch)
			assert.NoError(t, err)
			assert.Equal(t, tt.event, gotEvent)
			assert.Equal(t, tt.enabled, gotEnabled)
		})
	}
}

func TestNotice_SlowHandledByRoomstateOnly(t *testing.T) {
	c := newTestClient(t)

	ch := c.waiter.register("slow #channel", 50*time.Millisecond)
	c.handleMessage(notice(t, "slow_on", "#channel", "This room is now in slow mode."))

	// the notice must not resolve the command; ROOMSTATE does
	_, err := await(ch)
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestNotice_CommandAcknowledgements(t *testing.T) {
	tests := []struct {
		name    string
		msgID   string
		key     string
		wantErr string
	}{
		{name: "ban_success", msgID: "ban_success", key: "ban #channel"},
		{name: "ban_failure", msgID: "usage_ban", key: "ban #channel", wantErr: "usage_ban"},
		{name: "already_banned", msgID: "already_banned", key: "ban #channel", wantErr: "already_banned"},
		{name: "timeout_success", msgID: "timeout_success", key: "timeout #channel"},
		{name: "timeout_failure", msgID: "bad_timeout_self", key: "timeout #channel", wantErr: "bad_timeout_self"},
		{name: "unban_success", msgID: "unban_success", key: "unban #channel"},
		{name: "untimeout_resolves_unban", msgID: "untimeout_success", key: "unban #channel"},
		{name: "unban_failure", msgID: "bad_unban_no_ban", key: "unban #channel", wantErr: "bad_unban_no_ban"},
		{name: "mod_success", msgID: "mod_success", key: "mod #channel"},
		{name: "mod_failure", msgID: "bad_mod_banned", key: "mod #channel", wantErr: "bad_mod_banned"},
		{name: "unmod_success", msgID: "unmod_success", key: "unmod #channel"},
		{name: "color_success", msgID: "color_changed", key: "color #channel"},
		{name: "color_failure", msgID: "turbo_only_color", key: "color #channel", wantErr: "turbo_only_color"},
		{name: "commercial_success", msgID: "commercial_success", key: "commercial #channel"},
		{name: "clear_failure", msgID: "usage_clear", key: "clear #channel", wantErr: "usage_clear"},
		{name: "delete_success", msgID: "delete_message_success", key: "deletemessage #channel"},
		{name: "delete_failure", msgID: "bad_delete_message_mod", key: "deletemessage #channel", wantErr: "bad_delete_message_mod"},
		{name: "unhost_failure", msgID: "not_hosting", key: "unhost #channel", wantErr: "not_hosting"},
		{name: "whisper_failure", msgID: "whisper_restricted_recipient", key: "whisper #channel", wantErr: "whisper_restricted_recipient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)

			ch := c.waiter.register(tt.key, time.Second)
			c.handleMessage(notice(t, tt.msgID, "#channel", "some text"))

			_, err := await(ch)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// A successful deletion must acknowledge only the delete command, not leak
// into neighbouring subscriber-mode acknowledgements.
func TestNotice_DeleteSuccessIsIsolated(t *testing.T) {
	c := newTestClient(t)

	deleteCh := c.waiter.register("deletemessage #channel", time.Second)
	subsOffCh := c.waiter.register("subscribersoff #channel", time.Second)

	c.handleMessage(notice(t, "delete_message_success", "#channel", "The message has been deleted."))

	_, err := await(deleteCh)
	require.NoError(t, err)

	select {
	case <-subsOffCh.ch:
		t.Fatal("delete_message_success must not touch the subscribersoff command")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotice_RoomModsParsesList(t *testing.T) {
	c := newTestClient(t)

	ch := c.waiter.register("mods #channel", time.Second)
	c.handleMessage(notice(t, "room_mods", "#channel", "The moderators of this channel are: Alice, bob, Carol"))

	payload, err := await(ch)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, payload)
}

func TestNotice_NoModsResolvesEmpty(t *testing.T) {
	c := newTestClient(t)

	ch := c.waiter.register("mods #channel", time.Second)
	c.handleMessage(notice(t, "no_mods", "#channel", "There are no moderators of this channel."))

	payload, err := await(ch)
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestNotice_ChannelSuspendedRejectsJoin(t *testing.T) {
	c := newTestClient(t)

	ch := c.waiter.register("join #channel", time.Second)
	c.handleMessage(notice(t, "msg_channel_suspended", "#channel", "This channel does not exist or has been suspended."))

	_, err := await(ch)
	assert.EqualError(t, err, "msg_channel_suspended")
}

func TestNotice_HostsRemaining(t *testing.T) {
	c := newTestClient(t)

	ch := c.waiter.register("host #channel", time.Second)
	c.handleMessage(notice(t, "hosts_remaining", "#channel", "2 host commands remaining this half hour."))

	payload, err := await(ch)
	require.NoError(t, err)
	assert.Equal(t, 2, payload)
}

func TestNotice_NoPermissionFailsWholeFamily(t *testing.T) {
	c := newTestClient(t)

	ban := c.waiter.register("ban #channel", time.Second)
	slow := c.waiter.register("slow #channel", time.Second)
	join := c.waiter.register("join #channel", time.Second)

	c.handleMessage(notice(t, "no_permission", "#channel", "You don't have permission to perform that action."))

	_, err := await(ban)
	assert.EqualError(t, err, "no_permission")
	_, err = await(slow)
	assert.EqualError(t, err, "no_permission")

	// join is not a moderation command and must stay pending
	c.waiter.resolve("join #channel", nil)
	_, err = await(join)
	assert.NoError(t, err)
}

func TestNotice_InformationalEmitsNoticeEvent(t *testing.T) {
	c := newTestClient(t)

	var gotID, gotText string
	c.OnNotice(func(channel, msgID, text string) { gotID, gotText = msgID, text })

	c.handleMessage(notice(t, "msg_timedout", "#channel", "You are banned from talking."))
	assert.Equal(t, "msg_timedout", gotID)
	assert.Equal(t, "You are banned from talking.", gotText)
}

func TestNotice_AuthFailureDisablesReconnect(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "login_authentication_failed", text: "Login authentication failed"},
		{name: "login_unsuccessful", text: "Login unsuccessful"},
		{name: "improperly_formatted_auth", text: "Improperly formatted auth"},
		{name: "invalid_nick", text: "Invalid NICK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)

			c.handleMessage(mustParse(t, ":tmi.twitch.tv NOTICE * :"+tt.text))

			c.mu.Lock()
			defer c.mu.Unlock()
			assert.False(t, c.reconnectEnabled)
			assert.NotEmpty(t, c.reason)
		})
	}
}

func TestUsernotice_SubscriptionFamily(t *testing.T) {
	c := newTestClient(t)

	var resubMonths int
	var resubPlan SubPlan
	c.OnResub(func(channel, username string, months int, text string, userstate Userstate, plan SubPlan) {
		resubMonths, resubPlan = months, plan
	})

	c.handleMessage(mustParse(t, `@msg-id=resub;display-name=Someone;msg-param-months=9;msg-param-sub-plan=Prime;msg-param-sub-plan-name=Prime :tmi.twitch.tv USERNOTICE #channel :woo 9 months`))
	assert.Equal(t, 9, resubMonths)
	assert.True(t, resubPlan.Prime)
	assert.Equal(t, "Prime", resubPlan.Plan)

	var giftRecipient string
	c.OnSubGift(func(channel, username string, months int, recipient string, plan SubPlan, userstate Userstate) {
		giftRecipient = recipient
	})
	c.handleMessage(mustParse(t, `@msg-id=subgift;display-name=Giver;msg-param-recipient-display-name=Lucky;msg-param-sub-plan=1000 :tmi.twitch.tv USERNOTICE #channel`))
	assert.Equal(t, "Lucky", giftRecipient)

	var raider string
	var viewers int
	c.OnRaided(func(channel, username string, v int) { raider, viewers = username, v })
	c.handleMessage(mustParse(t, `@msg-id=raid;msg-param-displayName=BigStreamer;msg-param-viewerCount=420 :tmi.twitch.tv USERNOTICE #channel`))
	assert.Equal(t, "BigStreamer", raider)
	assert.Equal(t, 420, viewers)

	var mysteryCount int
	c.OnSubMysteryGift(func(channel, username string, count int, plan SubPlan, userstate Userstate) { mysteryCount = count })
	c.handleMessage(mustParse(t, `@msg-id=submysterygift;display-name=Generous;msg-param-mass-gift-count=5;msg-param-sub-plan=1000 :tmi.twitch.tv USERNOTICE #channel`))
	assert.Equal(t, 5, mysteryCount)
}
