package irc

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"twitchchat/internal/app/ports"
)

// entityUnescaper undoes the escaped HTML entities the emoticon API embeds
// in pattern codes, e.g. `\&lt\;3` for the <3 heart.
var entityUnescaper = strings.NewReplacer(
	`\&amp\;`, "&",
	`\&lt\;`, "<",
	`\&gt\;`, ">",
	`\&quot\;`, `"`,
	`\&#039\;`, "'",
)

// isPatternCode reports whether a catalog code is a pattern rather than a
// literal word, keyed on the punctuation the emoticon API only uses in its
// regex codes.
func isPatternCode(code string) bool {
	return strings.ContainsAny(code, `|\^$*+?:#`)
}

// findEmotes locates catalog emote codes in an outgoing message so the
// local echo carries the same spans an inbound message would. Codes are
// either literal words or patterns matched word by word. Spans count
// characters, not bytes, matching the inbound emotes tag.
func findEmotes(message string, catalog map[string][]ports.Emote) []EmoteSpan {
	if len(catalog) == 0 {
		return nil
	}

	type pattern struct {
		id string
		re *regexp.Regexp
	}
	literals := make(map[string]string)
	var patterns []pattern
	for _, set := range catalog {
		for _, emote := range set {
			if !isPatternCode(emote.Code) {
				literals[emote.Code] = emote.ID
				continue
			}
			re, err := regexp.Compile("^(?:" + entityUnescaper.Replace(emote.Code) + ")$")
			if err != nil {
				continue
			}
			patterns = append(patterns, pattern{id: emote.ID, re: re})
		}
	}

	match := func(word string) (string, bool) {
		if id, ok := literals[word]; ok {
			return id, true
		}
		for _, p := range patterns {
			if p.re.MatchString(word) {
				return p.id, true
			}
		}
		return "", false
	}

	var spans []EmoteSpan
	offset := 0
	for _, word := range strings.Split(message, " ") {
		length := utf8.RuneCountInString(word)
		if id, ok := match(word); ok && word != "" {
			spans = append(spans, EmoteSpan{
				ID:    id,
				Start: offset,
				End:   offset + length - 1,
			})
		}
		offset += length + 1
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}
