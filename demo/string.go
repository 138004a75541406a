// This file ports icza-screp/repparser/repparser.go's cString/koreanString
// handling: demo strings (player names, chat, map/host names) are untrusted
// bytes from a game server and are not guaranteed to be valid UTF-8. When a
// string fails UTF-8 validation we fall back to decoding it as EUC-KR (the
// one non-UTF-8 encoding the teacher special-cases) before giving up and
// keeping the raw bytes around for the caller under a RawXxx field.

package demo

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DecodeDisplayString returns a best-effort human-readable decoding of raw
// alongside the raw string itself. If raw is already valid UTF-8 both
// returned strings are identical.
func DecodeDisplayString(raw []byte) (decoded, rawStr string) {
	rawStr = string(raw)
	if utf8.ValidString(rawStr) {
		return rawStr, rawStr
	}

	dec := korean.EUCKR.NewDecoder()
	converted, _, err := transform.String(dec, rawStr)
	if err != nil {
		return rawStr, rawStr
	}
	converted = strings.ReplaceAll(converted, "\x00", "")
	return converted, rawStr
}

// TrimNUL trims raw at the first NUL byte, the way fixed-width header
// fields are packed.
func TrimNUL(raw []byte) []byte {
	for i, b := range raw {
		if b == 0 {
			return raw[:i]
		}
	}
	return raw
}
