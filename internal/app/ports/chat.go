package ports

import "time"

// ChatPort is the public command surface of the chat client. Every
// imperative command blocks until the server acknowledges it, the deadline
// elapses, or the connection drops.
type ChatPort interface {
	Connect() error
	Disconnect() error
	ReadyState() string

	Join(channel string) error
	Part(channel string) error
	Say(channel, message string) error
	Whisper(username, message string) error
	Ping() (time.Duration, error)
	Raw(line string) error

	Ban(channel, username, reason string) error
	Unban(channel, username string) error
	Timeout(channel, username string, seconds int, reason string) error
	Untimeout(channel, username string) error
	DeleteMessage(channel, messageID string) error
	Mod(channel, username string) error
	Unmod(channel, username string) error
	Mods(channel string) ([]string, error)
	Clear(channel string) error
	Color(channel, color string) error
	Commercial(channel string, seconds int) (int, error)
	Host(channel, target string) (int, error)
	Unhost(channel string) error
	Slow(channel string, seconds int) error
	SlowOff(channel string) error
	FollowersOnly(channel string, minutes int) error
	FollowersOnlyOff(channel string) error
	Subscribers(channel string) error
	SubscribersOff(channel string) error
	EmoteOnly(channel string) error
	EmoteOnlyOff(channel string) error
	R9kBeta(channel string) error
	R9kBetaOff(channel string) error

	IsMod(channel, username string) bool
	Channels() []string
	Username() string
}
