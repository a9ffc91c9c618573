package irc

import "strconv"

// Message is one decoded protocol line. Tag values hold string, bool or nil
// after coercion; the badges and emotes keys hold their expanded forms.
type Message struct {
	Raw     string
	Prefix  string
	Command string
	Params  []string
	Tags    map[string]any
}

// Badge is one entry of an expanded badges descriptor.
type Badge struct {
	Name    string
	Version string
}

// EmoteSpan is a character range of a chat message occupied by an emote.
type EmoteSpan struct {
	ID    string
	Start int
	End   int
}

// Channel returns the first parameter, usually the channel the message
// targets. Empty when the message carries no parameters.
func (m *Message) Channel() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[0]
}

// Text returns the trailing parameter, empty when absent.
func (m *Message) Text() string {
	if len(m.Params) < 2 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

// MsgID returns the msg-id tag, empty when absent.
func (m *Message) MsgID() string {
	return m.TagString("msg-id")
}

// TagString returns a tag as a string. Coerced booleans come back as
// "1"/"0" so callers that want the raw shape can still see it.
func (m *Message) TagString(key string) string {
	switch v := m.Tags[key].(type) {
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// TagInt returns a numeric tag, 0 when absent or not numeric.
func (m *Message) TagInt(key string) int {
	n, _ := strconv.Atoi(m.TagString(key))
	return n
}

// Nick extracts the username part of a user-prefixed origin.
func (m *Message) Nick() string {
	for i := 0; i < len(m.Prefix); i++ {
		if m.Prefix[i] == '!' {
			return m.Prefix[:i]
		}
	}
	return m.Prefix
}
