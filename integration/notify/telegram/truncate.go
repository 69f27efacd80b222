package telegram

import (
	"regexp"
	"strings"
)

const (
	truncationMark = "…"
	// closingReserve leaves room for the mark and the closing tags.
	closingReserve = 64
)

var tagPattern = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9-]*)[^>]*>`)

// truncateHTML shortens s to at most n runes. Telegram rejects messages with
// broken markup, so the cut never splits a tag or an entity, prefers a line
// boundary in the second half of the text, and closes the tags left open.
func truncateHTML(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	cut := string(r[:max(n-closingReserve, 0)])
	if i := strings.LastIndexByte(cut, '\n'); i > len(cut)/2 {
		cut = cut[:i]
	}
	if i := strings.LastIndexByte(cut, '<'); i > strings.LastIndexByte(cut, '>') {
		cut = cut[:i]
	}
	if i := strings.LastIndexByte(cut, '&'); i > strings.LastIndexByte(cut, ';') {
		cut = cut[:i]
	}

	var open []string
	for _, m := range tagPattern.FindAllStringSubmatch(cut, -1) {
		name := strings.ToLower(m[2])
		if m[1] == "" {
			open = append(open, name)
			continue
		}
		for i := len(open) - 1; i >= 0; i-- {
			if open[i] == name {
				open = open[:i]
				break
			}
		}
	}

	var b strings.Builder
	b.WriteString(cut)
	b.WriteString(truncationMark)
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i] + ">")
	}
	return b.String()
}
