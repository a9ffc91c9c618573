package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionUp - whether the chat connection is logged in.
	ConnectionUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connection_up",
		Help: "Whether the chat connection is established and logged in (1) or not (0)",
	})

	// ReconnectsTotal - reconnect attempts since process start.
	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_reconnects_total",
		Help: "Total number of reconnect attempts",
	})

	// LatencySeconds - last measured keepalive round trip.
	LatencySeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_latency_seconds",
		Help: "Last measured PING/PONG round trip in seconds",
	})

	// JoinedChannels - channels currently joined.
	JoinedChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_joined_channels",
		Help: "Number of channels currently joined",
	})

	// MessagesTotal - inbound messages by kind.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of inbound messages by kind",
		},
		[]string{"type"},
	)

	// MessagesSentTotal - outbound PRIVMSG count per channel.
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total number of messages sent per channel",
		},
		[]string{"channel"},
	)

	// CommandFailuresTotal - commands rejected or timed out by name.
	CommandFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_command_failures_total",
			Help: "Total number of failed commands by command name",
		},
		[]string{"command"},
	)

	// NoticesTotal - server NOTICE lines by msg-id.
	NoticesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_notices_total",
			Help: "Total number of server notices by msg-id",
		},
		[]string{"msg_id"},
	)

	// EmoteCatalogSets - emote sets held in the catalog.
	EmoteCatalogSets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_emote_catalog_sets",
		Help: "Number of emote sets currently cached",
	})
)
