package filename

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLength is the maximum basename length used when no limit is configured.
const DefaultMaxLength = 180

// Options controls sanitization.
type Options struct {
	// ASCIIOnly restricts the output to [0-9A-Za-z._-], transliterating Cyrillic first.
	// When false, the Cyrillic block (U+0400-U+04FF) is kept as is.
	ASCIIOnly bool
	// MaxLength caps the result length in runes. Values below 1 are treated as 1.
	MaxLength int
}

// Option configures Sanitize.
type Option func(*Options)

// ASCIIOnly restricts the result to portable ASCII characters.
func ASCIIOnly() Option {
	return func(o *Options) {
		o.ASCIIOnly = true
	}
}

// MaxLength sets the maximum result length in runes.
func MaxLength(n int) Option {
	return func(o *Options) {
		o.MaxLength = n
	}
}

// Sanitize converts raw into a filesystem-safe basename.
func Sanitize(raw string, opts ...Option) string {
	o := Options{MaxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(&o)
	}
	return SanitizeWith(raw, o)
}

// reservedBasename matches Windows device names that cannot be used as file stems.
var reservedBasename = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[1-9]|lpt[1-9])$`)

// SanitizeWith is Sanitize with explicit options.
func SanitizeWith(raw string, o Options) string {
	maxLen := max(o.MaxLength, 1)

	normalized := norm.NFKD.String(raw)
	if o.ASCIIOnly {
		normalized = transliterate(normalized)
	}

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		switch {
		case isCombiningMark(r):
			continue
		case r == '/' || r == '\\':
			b.WriteByte('_')
		case isControl(r):
			b.WriteByte('_')
		case isAllowed(r, o.ASCIIOnly):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	s := strings.Trim(collapseUnderscores(b.String()), "_")
	s = guardDotNames(s)
	s = guardReserved(s)
	s = capLength(s, maxLen)

	// Truncation can cut a stem down to a device name or leave only dots behind.
	if isReserved(s) {
		s = capLength("_"+s, maxLen)
	}
	return guardDotNames(s)
}

func isCombiningMark(r rune) bool {
	return (r >= 0x0300 && r <= 0x036f) ||
		(r >= 0x1ab0 && r <= 0x1aff) ||
		(r >= 0x1dc0 && r <= 0x1dff) ||
		(r >= 0x20d0 && r <= 0x20ff) ||
		(r >= 0xfe20 && r <= 0xfe2f)
}

// isControl reports C0 and C1 control characters, DEL included.
func isControl(r rune) bool {
	return r <= 0x1f || (r >= 0x7f && r <= 0x9f)
}

func isAllowed(r rune, asciiOnly bool) bool {
	if r < unicode.MaxASCII {
		return r >= '0' && r <= '9' ||
			r >= 'A' && r <= 'Z' ||
			r >= 'a' && r <= 'z' ||
			r == '.' || r == '_' || r == '-'
	}
	return !asciiOnly && r >= 0x0400 && r <= 0x04ff
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func guardDotNames(s string) string {
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

func isReserved(s string) bool {
	stem, _, _ := strings.Cut(s, ".")
	return reservedBasename.MatchString(stem)
}

func guardReserved(s string) string {
	if isReserved(s) {
		return "_" + s
	}
	return s
}

// capLength truncates s to maxLen runes. When s has an extension shorter than the
// budget, the stem is shortened and the extension is kept verbatim.
func capLength(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	dot := -1
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '.' {
			dot = i
			break
		}
	}

	if dot > 0 && dot < len(runes)-1 {
		ext := runes[dot:]
		if len(ext) < maxLen {
			stem := runes[:min(dot, maxLen-len(ext))]
			return string(stem) + string(ext)
		}
	}

	return string(runes[:maxLen])
}
