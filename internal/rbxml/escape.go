package rbxml

import (
	"strings"
	"unicode/utf8"
)

// Whitespace is written as character references so attribute-value and
// end-of-line normalization leave it intact.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r", "&#13;",
	"\n", "&#10;",
	"\t", "&#9;",
)

// Escape replaces the five markup-significant characters with their named
// entities and CR, LF and tab with character references. Characters XML
// cannot carry are replaced first (see Sanitize). The empty string escapes
// to itself.
func Escape(s string) string {
	if s == "" {
		return ""
	}
	return textEscaper.Replace(Sanitize(s))
}

// Sanitize returns s with invalid UTF-8 and characters outside the XML 1.0
// Char production replaced by U+FFFD. Valid input is returned unchanged.
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, isIllegalXMLChar) < 0 {
		return s
	}
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	return strings.Map(func(r rune) rune {
		if isIllegalXMLChar(r) {
			return utf8.RuneError
		}
		return r
	}, s)
}

func isIllegalXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return false
	case r < 0x20:
		return true
	case r >= 0xD800 && r <= 0xDFFF:
		return true
	case r == 0xFFFE, r == 0xFFFF:
		return true
	default:
		return r > utf8.MaxRune
	}
}

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// writeCDATA wraps s in CDATA sections so it survives byte-for-byte.
// A literal "]]>" is split across two sections, and each carriage return is
// written as a character reference between sections because parsers
// normalize raw CR and CRLF line endings to LF. Characters XML cannot carry
// become U+FFFD.
func writeCDATA(b *strings.Builder, s string) {
	s = Sanitize(s)
	b.WriteString(cdataOpen)
	for len(s) > 0 {
		i := strings.IndexAny(s, "]\r")
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		s = s[i:]
		switch {
		case s[0] == '\r':
			b.WriteString(cdataClose)
			b.WriteString("&#13;")
			b.WriteString(cdataOpen)
			s = s[1:]
		case strings.HasPrefix(s, cdataClose):
			// "]]" ends this section, ">" opens the next one.
			b.WriteString("]]")
			b.WriteString(cdataClose)
			b.WriteString(cdataOpen)
			b.WriteString(">")
			s = s[len(cdataClose):]
		default:
			b.WriteByte(']')
			s = s[1:]
		}
	}
	b.WriteString(cdataClose)
}
