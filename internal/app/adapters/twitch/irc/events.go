package irc

import (
	"sync"
	"time"

	"twitchchat/internal/app/ports"
)

// Userstate is the tag map attached to messaging events.
type Userstate map[string]any

// SubPlan describes the subscription tier of a USERNOTICE event.
type SubPlan struct {
	Prime    bool
	Plan     string
	PlanName string
}

// events is the public callback surface. Handlers run on the inbound
// dispatch goroutine; long work belongs in the handler's own goroutine.
type events struct {
	mu sync.RWMutex

	connecting   []func(server string, port int)
	logon        []func()
	connected    []func(server string, port int)
	disconnected []func(reason string)
	reconnect    []func()
	maxReconnect []func()

	join  []func(channel, username string, self bool)
	part  []func(channel, username string, self bool)
	names []func(channel string, usernames []string)

	message []func(channel string, userstate Userstate, text string, self bool)
	chat    []func(channel string, userstate Userstate, text string, self bool)
	action  []func(channel string, userstate Userstate, text string, self bool)
	whisper []func(from string, userstate Userstate, text string, self bool)
	cheer   []func(channel string, userstate Userstate, text string)

	ban            []func(channel, username, reason string)
	timeout        []func(channel, username, reason string, seconds int)
	messageRemoved []func(channel, username, text string, userstate Userstate)
	mod            []func(channel, username string)
	unmod          []func(channel, username string)
	clearChat      []func(channel string)

	roomstate     []func(channel string, state Userstate)
	slowMode      []func(channel string, enabled bool, seconds int)
	followersMode []func(channel string, enabled bool, minutes int)
	emoteOnly     []func(channel string, enabled bool)
	subscribers   []func(channel string, enabled bool)
	r9kMode       []func(channel string, enabled bool)

	subscription       []func(channel, username string, plan SubPlan, text string, userstate Userstate)
	resub              []func(channel, username string, months int, text string, userstate Userstate, plan SubPlan)
	subGift            []func(channel, username string, months int, recipient string, plan SubPlan, userstate Userstate)
	anonSubGift        []func(channel string, months int, recipient string, plan SubPlan, userstate Userstate)
	subMysteryGift     []func(channel, username string, count int, plan SubPlan, userstate Userstate)
	anonSubMysteryGift []func(channel string, count int, plan SubPlan, userstate Userstate)
	giftPaidUpgrade    []func(channel, username, sender string, userstate Userstate)
	anonGiftUpgrade    []func(channel, username string, userstate Userstate)
	raided             []func(channel, username string, viewers int)

	hosted  []func(channel, host string, viewers int, auto bool)
	hosting []func(channel, target string, viewers int)
	unhost  []func(channel string, viewers int)

	notice    []func(channel, msgID, text string)
	ping      []func()
	pong      []func(latency time.Duration)
	emoteSets []func(sets string, catalog map[string][]ports.Emote)
	raw       []func(msg *Message)
}

func (c *Client) OnConnecting(fn func(server string, port int)) {
	c.events.mu.Lock()
	c.events.connecting = append(c.events.connecting, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnLogon(fn func()) {
	c.events.mu.Lock()
	c.events.logon = append(c.events.logon, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnConnected(fn func(server string, port int)) {
	c.events.mu.Lock()
	c.events.connected = append(c.events.connected, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnDisconnected(fn func(reason string)) {
	c.events.mu.Lock()
	c.events.disconnected = append(c.events.disconnected, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnReconnect(fn func()) {
	c.events.mu.Lock()
	c.events.reconnect = append(c.events.reconnect, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnMaxReconnect(fn func()) {
	c.events.mu.Lock()
	c.events.maxReconnect = append(c.events.maxReconnect, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnJoin(fn func(channel, username string, self bool)) {
	c.events.mu.Lock()
	c.events.join = append(c.events.join, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnPart(fn func(channel, username string, self bool)) {
	c.events.mu.Lock()
	c.events.part = append(c.events.part, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnNames(fn func(channel string, usernames []string)) {
	c.events.mu.Lock()
	c.events.names = append(c.events.names, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnMessage(fn func(channel string, userstate Userstate, text string, self bool)) {
	c.events.mu.Lock()
	c.events.message = append(c.events.message, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnChat(fn func(channel string, userstate Userstate, text string, self bool)) {
	c.events.mu.Lock()
	c.events.chat = append(c.events.chat, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnAction(fn func(channel string, userstate Userstate, text string, self bool)) {
	c.events.mu.Lock()
	c.events.action = append(c.events.action, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnWhisper(fn func(from string, userstate Userstate, text string, self bool)) {
	c.events.mu.Lock()
	c.events.whisper = append(c.events.whisper, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnCheer(fn func(channel string, userstate Userstate, text string)) {
	c.events.mu.Lock()
	c.events.cheer = append(c.events.cheer, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnBan(fn func(channel, username, reason string)) {
	c.events.mu.Lock()
	c.events.ban = append(c.events.ban, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnTimeout(fn func(channel, username, reason string, seconds int)) {
	c.events.mu.Lock()
	c.events.timeout = append(c.events.timeout, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnMessageRemoved(fn func(channel, username, text string, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.messageRemoved = append(c.events.messageRemoved, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnMod(fn func(channel, username string)) {
	c.events.mu.Lock()
	c.events.mod = append(c.events.mod, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnUnmod(fn func(channel, username string)) {
	c.events.mu.Lock()
	c.events.unmod = append(c.events.unmod, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnClearChat(fn func(channel string)) {
	c.events.mu.Lock()
	c.events.clearChat = append(c.events.clearChat, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnRoomstate(fn func(channel string, state Userstate)) {
	c.events.mu.Lock()
	c.events.roomstate = append(c.events.roomstate, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnSlowMode(fn func(channel string, enabled bool, seconds int)) {
	c.events.mu.Lock()
	c.events.slowMode = append(c.events.slowMode, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnFollowersMode(fn func(channel string, enabled bool, minutes int)) {
	c.events.mu.Lock()
	c.events.followersMode = append(c.events.followersMode, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnEmoteOnly(fn func(channel string, enabled bool)) {
	c.events.mu.Lock()
	c.events.emoteOnly = append(c.events.emoteOnly, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnSubscribers(fn func(channel string, enabled bool)) {
	c.events.mu.Lock()
	c.events.subscribers = append(c.events.subscribers, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnR9kMode(fn func(channel string, enabled bool)) {
	c.events.mu.Lock()
	c.events.r9kMode = append(c.events.r9kMode, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnSubscription(fn func(channel, username string, plan SubPlan, text string, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.subscription = append(c.events.subscription, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnResub(fn func(channel, username string, months int, text string, userstate Userstate, plan SubPlan)) {
	c.events.mu.Lock()
	c.events.resub = append(c.events.resub, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnSubGift(fn func(channel, username string, months int, recipient string, plan SubPlan, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.subGift = append(c.events.subGift, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnAnonSubGift(fn func(channel string, months int, recipient string, plan SubPlan, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.anonSubGift = append(c.events.anonSubGift, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnSubMysteryGift(fn func(channel, username string, count int, plan SubPlan, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.subMysteryGift = append(c.events.subMysteryGift, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnAnonSubMysteryGift(fn func(channel string, count int, plan SubPlan, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.anonSubMysteryGift = append(c.events.anonSubMysteryGift, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnGiftPaidUpgrade(fn func(channel, username, sender string, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.giftPaidUpgrade = append(c.events.giftPaidUpgrade, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnAnonGiftPaidUpgrade(fn func(channel, username string, userstate Userstate)) {
	c.events.mu.Lock()
	c.events.anonGiftUpgrade = append(c.events.anonGiftUpgrade, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnRaided(fn func(channel, username string, viewers int)) {
	c.events.mu.Lock()
	c.events.raided = append(c.events.raided, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnHosted(fn func(channel, host string, viewers int, auto bool)) {
	c.events.mu.Lock()
	c.events.hosted = append(c.events.hosted, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnHosting(fn func(channel, target string, viewers int)) {
	c.events.mu.Lock()
	c.events.hosting = append(c.events.hosting, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnUnhost(fn func(channel string, viewers int)) {
	c.events.mu.Lock()
	c.events.unhost = append(c.events.unhost, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnNotice(fn func(channel, msgID, text string)) {
	c.events.mu.Lock()
	c.events.notice = append(c.events.notice, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnPing(fn func()) {
	c.events.mu.Lock()
	c.events.ping = append(c.events.ping, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnPong(fn func(latency time.Duration)) {
	c.events.mu.Lock()
	c.events.pong = append(c.events.pong, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnEmoteSets(fn func(sets string, catalog map[string][]ports.Emote)) {
	c.events.mu.Lock()
	c.events.emoteSets = append(c.events.emoteSets, fn)
	c.events.mu.Unlock()
}

func (c *Client) OnRaw(fn func(msg *Message)) {
	c.events.mu.Lock()
	c.events.raw = append(c.events.raw, fn)
	c.events.mu.Unlock()
}
