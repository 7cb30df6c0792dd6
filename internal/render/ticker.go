package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// tickerPattern matches "Company Name (TICKER)". The name starts with an
// ASCII capital and continues over ASCII letters, digits, whitespace
// ([\t\n\f\r ]), '&', '.', '-' and '\''. The ticker is 1-5 ASCII capitals.
// Matching is leftmost-first with a greedy name, so the name runs from the
// first capital of the contiguous run up to the opening parenthesis.
var tickerPattern = regexp.MustCompile(`([A-Z][A-Za-z0-9\s&.\-']+)\s*\(([A-Z]{1,5})\)`)

// emphasisPattern matches the wrapper markup a mention may already carry,
// either from the generator echoing the requested format or from a previous
// formatting pass.
var emphasisPattern = regexp.MustCompile(`\*\*|</?u>|</?strong>`)

const mentionFormat = `<u><strong><u>%s (%s)</u></strong></u>`

var braceEscaper = strings.NewReplacer("{", "&#123;", "}", "&#125;")

// escapeText escapes s for HTML body text. Braces are escaped too so that
// generated text can never introduce a template placeholder.
func escapeText(s string) string {
	return braceEscaper.Replace(html.EscapeString(s))
}

// Normalize turns text (raw or previously formatted) into plain text:
// entities are unescaped and emphasis wrappers removed until none remain.
func Normalize(text string) string {
	s := html.UnescapeString(text)
	for {
		stripped := emphasisPattern.ReplaceAllString(s, "")
		if stripped == s {
			return s
		}
		s = stripped
	}
}

// Mention is one recognized company mention.
type Mention struct {
	Company string
	Ticker  string
}

// FindMentions returns the company mentions in text, left to right.
func FindMentions(text string) []Mention {
	s := Normalize(text)
	var out []Mention
	for _, m := range tickerPattern.FindAllStringSubmatch(s, -1) {
		out = append(out, Mention{Company: strings.TrimSpace(m[1]), Ticker: m[2]})
	}
	return out
}

// FormatTickers returns text as escaped HTML with every company mention
// wrapped in the underline/strong emphasis markup. It is idempotent:
// FormatTickers(FormatTickers(x)) == FormatTickers(x).
func FormatTickers(text string) string {
	s := Normalize(text)

	var sb strings.Builder
	last := 0
	for _, m := range tickerPattern.FindAllStringSubmatchIndex(s, -1) {
		sb.WriteString(escapeText(s[last:m[0]]))
		company := strings.TrimSpace(s[m[2]:m[3]])
		ticker := s[m[4]:m[5]]
		sb.WriteString(fmt.Sprintf(mentionFormat, escapeText(company), ticker))
		last = m[1]
	}
	sb.WriteString(escapeText(s[last:]))

	return sb.String()
}
