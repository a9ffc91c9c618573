package ident

import (
	"fmt"
	"math/rand"
	"strings"
)

// Channel lowercases a channel name and guarantees the leading '#'.
func Channel(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "#"
	}
	if !strings.HasPrefix(name, "#") {
		name = "#" + name
	}
	return name
}

// Username lowercases a username and strips a leading '#'.
func Username(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(name, "#")
}

// Token guarantees the oauth: prefix on a password token. An empty token
// stays empty so anonymous logins keep working.
func Token(token string) string {
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "oauth:") {
		return token
	}
	return "oauth:" + token
}

// Justinfan returns a random anonymous read-only username.
func Justinfan() string {
	return fmt.Sprintf("justinfan%d", 10000+rand.Intn(70000))
}

// IsJustinfan reports whether the username is an anonymous identity.
func IsJustinfan(username string) bool {
	return strings.HasPrefix(strings.ToLower(username), "justinfan")
}

const actionPrefix = "\u0001ACTION "
const actionSuffix = "\u0001"

// ActionText unwraps a /me control-character envelope. The second return
// is false for a plain message.
func ActionText(msg string) (string, bool) {
	if strings.HasPrefix(msg, actionPrefix) && strings.HasSuffix(msg, actionSuffix) {
		return msg[len(actionPrefix) : len(msg)-len(actionSuffix)], true
	}
	return msg, false
}

// SplitLine breaks a message ahead of the length limit, preferring the last
// space before the limit so words survive the split.
func SplitLine(msg string, limit int) (string, string) {
	if len(msg) < limit {
		return msg, ""
	}
	cut := strings.LastIndex(msg[:limit], " ")
	if cut <= 0 {
		return msg[:limit-1], msg[limit-1:]
	}
	return msg[:cut], msg[cut+1:]
}

// ExtractNumber returns the first integer embedded in free text, 0 if none.
func ExtractNumber(s string) int {
	n, seen := 0, false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			seen = true
		} else if seen {
			break
		}
	}
	return n
}
