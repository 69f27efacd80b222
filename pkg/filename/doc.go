// Package filename converts untrusted strings into filesystem-safe basenames.
//
// Names coming from email attachments, uploads or third-party APIs are never trusted.
// Sanitize guards against path traversal ("../"), null-byte and control character
// injection, Windows device-name collisions and overlong names while keeping the
// result readable for non-Latin input.
//
// # Usage
//
//	import "github.com/dmitrymomot/notifykit/pkg/filename"
//
//	name := filename.Sanitize("../../etc/passwd")
//	// name == ".._.._etc_passwd"
//
//	name = filename.Sanitize("Отчёт за май.pdf", filename.ASCIIOnly())
//	// name == "Otchet_za_mai.pdf"
//
//	name = filename.Sanitize("NUL.txt")
//	// name == "_NUL.txt"
//
// # Algorithm
//
// The input is normalized to NFKD so accented characters split into a base letter and
// a combining mark. In ASCII-only mode Cyrillic letters are transliterated to Latin
// before the marks are stripped. Path separators, control characters and characters
// outside the allowed set are replaced with "_", runs of "_" are collapsed and trimmed.
// Reserved device names (con, prn, aux, nul, com1-9, lpt1-9) get a "_" prefix and the
// result is capped to the maximum length, preserving the extension when it fits.
//
// The function is total: it never returns an empty string, "." or "..", and the result
// never exceeds the configured maximum length measured in runes.
package filename
