package irc

import (
	"strings"

	"twitchchat/internal/app/adapters/metrics"
)

// handleUsernotice fans the subscription and raid family out to typed
// events. Unknown msg-ids are surfaced through the raw event only.
func (c *Client) handleUsernotice(msg *Message) {
	channel := msg.Channel()
	msgID := msg.MsgID()
	text := msg.Text()

	username := msg.TagString("display-name")
	if username == "" {
		username = msg.TagString("login")
	}

	plan := SubPlan{
		Plan:     msg.TagString("msg-param-sub-plan"),
		PlanName: msg.TagString("msg-param-sub-plan-name"),
	}
	plan.Prime = strings.Contains(plan.Plan, "Prime")

	months := msg.TagInt("msg-param-months")
	recipient := msg.TagString("msg-param-recipient-display-name")
	if recipient == "" {
		recipient = msg.TagString("msg-param-recipient-user-name")
	}
	giftCount := msg.TagInt("msg-param-mass-gift-count")

	msg.Tags["message-type"] = msgID
	userstate := Userstate(msg.Tags)
	metrics.MessagesTotal.WithLabelValues("usernotice").Inc()

	switch msgID {
	case "resub":
		c.events.emitResub(channel, username, months, text, userstate, plan)

	case "sub":
		c.events.emitSubscription(channel, username, plan, text, userstate)

	case "subgift":
		c.events.emitSubGift(channel, username, months, recipient, plan, userstate)

	case "anonsubgift":
		c.events.emitAnonSubGift(channel, months, recipient, plan, userstate)

	case "submysterygift":
		c.events.emitSubMysteryGift(channel, username, giftCount, plan, userstate)

	case "anonsubmysterygift":
		c.events.emitAnonSubMysteryGift(channel, giftCount, plan, userstate)

	case "giftpaidupgrade":
		sender := msg.TagString("msg-param-sender-name")
		if sender == "" {
			sender = msg.TagString("msg-param-sender-login")
		}
		c.events.emitGiftPaidUpgrade(channel, username, sender, userstate)

	case "anongiftpaidupgrade":
		c.events.emitAnonGiftPaidUpgrade(channel, username, userstate)

	case "raid":
		raider := msg.TagString("msg-param-displayName")
		if raider == "" {
			raider = msg.TagString("msg-param-login")
		}
		c.events.emitRaided(channel, raider, msg.TagInt("msg-param-viewerCount"))
	}
}
