package screener

import (
	"regexp"
	"unicode/utf8"
)

const DefaultMaxOutputBytes = 64 * 1024

const truncationMarker = "\n... [output truncated]"

// markupRe matches opening and closing tags that a browser could
// interpret if the output is rendered without escaping.
var markupRe = regexp.MustCompile(`(?i)<(/?)(script|iframe|object|embed)\b`)

// SanitizeOutput bounds the size of program output and neutralizes
// embedded markup before the output is surfaced to a client
// renderer. Truncation happens first so the marker itself cannot be
// cut off.
func SanitizeOutput(out string, maxBytes int) string {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxOutputBytes
	}
	if len(out) > maxBytes {
		cut := maxBytes
		// do not split a multi-byte rune at the cut point
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut] + truncationMarker
	}
	return markupRe.ReplaceAllString(out, "&lt;$1$2")
}
