package irc

import (
	"time"

	"twitchchat/internal/app/ports"
)

func (e *events) emitConnecting(server string, port int) {
	e.mu.RLock()
	hs := e.connecting
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(server, port)
	}
}

func (e *events) emitLogon() {
	e.mu.RLock()
	hs := e.logon
	e.mu.RUnlock()
	for _, fn := range hs {
		fn()
	}
}

func (e *events) emitConnected(server string, port int) {
	e.mu.RLock()
	hs := e.connected
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(server, port)
	}
}

func (e *events) emitDisconnected(reason string) {
	e.mu.RLock()
	hs := e.disconnected
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(reason)
	}
}

func (e *events) emitReconnect() {
	e.mu.RLock()
	hs := e.reconnect
	e.mu.RUnlock()
	for _, fn := range hs {
		fn()
	}
}

func (e *events) emitMaxReconnect() {
	e.mu.RLock()
	hs := e.maxReconnect
	e.mu.RUnlock()
	for _, fn := range hs {
		fn()
	}
}

func (e *events) emitJoin(channel, username string, self bool) {
	e.mu.RLock()
	hs := e.join
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, self)
	}
}

func (e *events) emitPart(channel, username string, self bool) {
	e.mu.RLock()
	hs := e.part
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, self)
	}
}

func (e *events) emitNames(channel string, usernames []string) {
	e.mu.RLock()
	hs := e.names
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, usernames)
	}
}

func (e *events) emitMessage(channel string, userstate Userstate, text string, self bool) {
	e.mu.RLock()
	hs := e.message
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, userstate, text, self)
	}
}

func (e *events) emitChat(channel string, userstate Userstate, text string, self bool) {
	e.mu.RLock()
	hs := e.chat
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, userstate, text, self)
	}
	e.emitMessage(channel, userstate, text, self)
}

func (e *events) emitAction(channel string, userstate Userstate, text string, self bool) {
	e.mu.RLock()
	hs := e.action
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, userstate, text, self)
	}
	e.emitMessage(channel, userstate, text, self)
}

func (e *events) emitWhisper(from string, userstate Userstate, text string, self bool) {
	e.mu.RLock()
	hs := e.whisper
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(from, userstate, text, self)
	}
	e.emitMessage(from, userstate, text, self)
}

func (e *events) emitCheer(channel string, userstate Userstate, text string) {
	e.mu.RLock()
	hs := e.cheer
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, userstate, text)
	}
}

func (e *events) emitBan(channel, username, reason string) {
	e.mu.RLock()
	hs := e.ban
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, reason)
	}
}

func (e *events) emitTimeout(channel, username, reason string, seconds int) {
	e.mu.RLock()
	hs := e.timeout
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, reason, seconds)
	}
}

func (e *events) emitMessageRemoved(channel, username, text string, userstate Userstate) {
	e.mu.RLock()
	hs := e.messageRemoved
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, text, userstate)
	}
}

func (e *events) emitMod(channel, username string) {
	e.mu.RLock()
	hs := e.mod
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username)
	}
}

func (e *events) emitUnmod(channel, username string) {
	e.mu.RLock()
	hs := e.unmod
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username)
	}
}

func (e *events) emitClearChat(channel string) {
	e.mu.RLock()
	hs := e.clearChat
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel)
	}
}

func (e *events) emitRoomstate(channel string, state Userstate) {
	e.mu.RLock()
	hs := e.roomstate
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, state)
	}
}

func (e *events) emitSlowMode(channel string, enabled bool, seconds int) {
	e.mu.RLock()
	hs := e.slowMode
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, enabled, seconds)
	}
}

func (e *events) emitFollowersMode(channel string, enabled bool, minutes int) {
	e.mu.RLock()
	hs := e.followersMode
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, enabled, minutes)
	}
}

func (e *events) emitEmoteOnly(channel string, enabled bool) {
	e.mu.RLock()
	hs := e.emoteOnly
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, enabled)
	}
}

func (e *events) emitSubscribers(channel string, enabled bool) {
	e.mu.RLock()
	hs := e.subscribers
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, enabled)
	}
}

func (e *events) emitR9kMode(channel string, enabled bool) {
	e.mu.RLock()
	hs := e.r9kMode
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, enabled)
	}
}

func (e *events) emitSubscription(channel, username string, plan SubPlan, text string, userstate Userstate) {
	e.mu.RLock()
	hs := e.subscription
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, plan, text, userstate)
	}
}

func (e *events) emitResub(channel, username string, months int, text string, userstate Userstate, plan SubPlan) {
	e.mu.RLock()
	hs := e.resub
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, months, text, userstate, plan)
	}
}

func (e *events) emitSubGift(channel, username string, months int, recipient string, plan SubPlan, userstate Userstate) {
	e.mu.RLock()
	hs := e.subGift
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, months, recipient, plan, userstate)
	}
}

func (e *events) emitAnonSubGift(channel string, months int, recipient string, plan SubPlan, userstate Userstate) {
	e.mu.RLock()
	hs := e.anonSubGift
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, months, recipient, plan, userstate)
	}
}

func (e *events) emitSubMysteryGift(channel, username string, count int, plan SubPlan, userstate Userstate) {
	e.mu.RLock()
	hs := e.subMysteryGift
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, count, plan, userstate)
	}
}

func (e *events) emitAnonSubMysteryGift(channel string, count int, plan SubPlan, userstate Userstate) {
	e.mu.RLock()
	hs := e.anonSubMysteryGift
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, count, plan, userstate)
	}
}

func (e *events) emitGiftPaidUpgrade(channel, username, sender string, userstate Userstate) {
	e.mu.RLock()
	hs := e.giftPaidUpgrade
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, sender, userstate)
	}
}

func (e *events) emitAnonGiftPaidUpgrade(channel, username string, userstate Userstate) {
	e.mu.RLock()
	hs := e.anonGiftUpgrade
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, userstate)
	}
}

func (e *events) emitRaided(channel, username string, viewers int) {
	e.mu.RLock()
	hs := e.raided
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, username, viewers)
	}
}

func (e *events) emitHosted(channel, host string, viewers int, auto bool) {
	e.mu.RLock()
	hs := e.hosted
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, host, viewers, auto)
	}
}

func (e *events) emitHosting(channel, target string, viewers int) {
	e.mu.RLock()
	hs := e.hosting
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, target, viewers)
	}
}

func (e *events) emitUnhost(channel string, viewers int) {
	e.mu.RLock()
	hs := e.unhost
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, viewers)
	}
}

func (e *events) emitNotice(channel, msgID, text string) {
	e.mu.RLock()
	hs := e.notice
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(channel, msgID, text)
	}
}

func (e *events) emitPing() {
	e.mu.RLock()
	hs := e.ping
	e.mu.RUnlock()
	for _, fn := range hs {
		fn()
	}
}

func (e *events) emitPong(latency time.Duration) {
	e.mu.RLock()
	hs := e.pong
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(latency)
	}
}

func (e *events) emitEmoteSets(sets string, catalog map[string][]ports.Emote) {
	e.mu.RLock()
	hs := e.emoteSets
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(sets, catalog)
	}
}

func (e *events) emitRaw(msg *Message) {
	e.mu.RLock()
	hs := e.raw
	e.mu.RUnlock()
	for _, fn := range hs {
		fn(msg)
	}
}
