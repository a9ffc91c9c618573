package irc

import (
	"errors"
	"strconv"
	"strings"
)

var errNoCommand = errors.New("line has no command token")

// raw tag values carrying structured sub-data, exempt from generic coercion
var rawTagKeys = map[string]bool{
	"emote-sets":   true,
	"ban-duration": true,
	"bits":         true,
}

// parseLine decodes one protocol line: optional @tags, optional :prefix,
// command, parameters with an optional trailing ":"-led parameter.
func parseLine(line string) (*Message, error) {
	msg := &Message{Raw: line, Tags: make(map[string]any)}
	rest := line

	if len(rest) > 0 && rest[0] == '@' {
		spaceIdx := strings.IndexByte(rest, ' ')
		if spaceIdx == -1 {
			return nil, errNoCommand
		}
		parseTags(rest[1:spaceIdx], msg.Tags)
		rest = rest[spaceIdx+1:]
	}

	if len(rest) > 0 && rest[0] == ':' {
		spaceIdx := strings.IndexByte(rest, ' ')
		if spaceIdx == -1 {
			return nil, errNoCommand
		}
		msg.Prefix = rest[1:spaceIdx]
		rest = rest[spaceIdx+1:]
	}

	for len(rest) > 0 {
		if rest[0] == ':' {
			msg.Params = append(msg.Params, rest[1:])
			break
		}
		spaceIdx := strings.IndexByte(rest, ' ')
		var token string
		if spaceIdx == -1 {
			token, rest = rest, ""
		} else {
			token, rest = rest[:spaceIdx], rest[spaceIdx+1:]
		}
		if msg.Command == "" {
			msg.Command = token
		} else if token != "" {
			msg.Params = append(msg.Params, token)
		}
	}

	if msg.Command == "" {
		return nil, errNoCommand
	}

	expandBadges(msg.Tags)
	expandEmotes(msg.Tags)
	coerceTags(msg.Tags)
	return msg, nil
}

func parseTags(rawTags string, tags map[string]any) {
	start := 0
	for i := 0; i <= len(rawTags); i++ {
		if i == len(rawTags) || rawTags[i] == ';' {
			tag := rawTags[start:i]
			if tag != "" {
				if eq := strings.IndexByte(tag, '='); eq != -1 {
					tags[tag[:eq]] = unescapeTag(tag[eq+1:])
				} else {
					tags[tag] = nil
				}
			}
			start = i + 1
		}
	}
}

// coerceTags turns "1"/"0" into booleans and empty values into nil for
// every tag not carrying structured sub-data. Running it twice yields the
// same map as running it once.
func coerceTags(tags map[string]any) {
	for key, val := range tags {
		if rawTagKeys[key] || key == "badges" || key == "emotes" {
			continue
		}
		s, ok := val.(string)
		if !ok {
			continue
		}
		switch s {
		case "1":
			tags[key] = true
		case "0":
			tags[key] = false
		case "":
			tags[key] = nil
		}
	}
}

// expandBadges replaces a "set/ver,set/ver" descriptor with []Badge.
// Entries that do not split cleanly are skipped, the rest survive.
func expandBadges(tags map[string]any) {
	raw, ok := tags["badges"].(string)
	if !ok || raw == "" {
		return
	}

	var badges []Badge
	for _, part := range strings.Split(raw, ",") {
		slash := strings.IndexByte(part, '/')
		if slash <= 0 || slash == len(part)-1 {
			continue
		}
		badges = append(badges, Badge{Name: part[:slash], Version: part[slash+1:]})
	}
	tags["badges-raw"] = raw
	tags["badges"] = badges
}

// expandEmotes replaces an "id:a-b,c-d/id:a-b" descriptor with []EmoteSpan.
func expandEmotes(tags map[string]any) {
	raw, ok := tags["emotes"].(string)
	if !ok || raw == "" {
		return
	}

	var spans []EmoteSpan
	for _, group := range strings.Split(raw, "/") {
		colon := strings.IndexByte(group, ':')
		if colon <= 0 {
			continue
		}
		id := group[:colon]
		for _, rng := range strings.Split(group[colon+1:], ",") {
			dash := strings.IndexByte(rng, '-')
			if dash <= 0 {
				continue
			}
			start, err1 := strconv.Atoi(rng[:dash])
			end, err2 := strconv.Atoi(rng[dash+1:])
			if err1 != nil || err2 != nil {
				continue
			}
			spans = append(spans, EmoteSpan{ID: id, Start: start, End: end})
		}
	}
	tags["emotes-raw"] = raw
	tags["emotes"] = spans
}

// encodeEmotes is the inverse of expandEmotes, used when echoing outgoing
// messages with locally matched emote positions.
func encodeEmotes(spans []EmoteSpan) string {
	var b strings.Builder
	last := ""
	for i, s := range spans {
		if s.ID != last {
			if i > 0 {
				b.WriteByte('/')
			}
			b.WriteString(s.ID)
			b.WriteByte(':')
			last = s.ID
		} else {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(s.Start))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(s.End))
	}
	return b.String()
}

var tagUnescaper = strings.NewReplacer(
	`\s`, " ",
	`\n`, "\n",
	`\r`, "\r",
	`\:`, ";",
	`\\`, `\`,
)

// unescapeTag reverses the protocol's tag-value escaping.
func unescapeTag(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	return tagUnescaper.Replace(s)
}
