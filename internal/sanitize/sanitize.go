// Package sanitize neutralizes markup in user-supplied text before it is
// echoed back to clients.
//
// Text passes through unchanged apart from < and >, so entities and quotes in
// plain prose survive. Tags that the bluemonday UGC policy allows are kept
// with their unsafe attributes removed; every other tag, doctype and stray
// bracket is escaped to &lt; / &gt;. Terminated comments are dropped; an
// unterminated tag or comment keeps its text with the brackets escaped.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	policy = bluemonday.UGCPolicy()

	bracketEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")
)

// String returns s with dangerous markup neutralized.
func String(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	consumed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// An unterminated tag or comment at the end is kept as text.
			b.WriteString(bracketEscaper.Replace(s[consumed:]))
			return b.String()
		}
		raw := string(z.Raw())
		consumed += len(raw)
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			b.WriteString(tag(raw))
		case html.CommentToken:
			if !isComment(raw) {
				b.WriteString(bracketEscaper.Replace(raw))
			}
		default:
			b.WriteString(bracketEscaper.Replace(raw))
		}
	}
}

// isComment reports whether raw is a terminated <!-- ... --> comment.
// Bogus comments such as <?xml ...>, </ x> and <![CDATA[...]]> are not.
func isComment(raw string) bool {
	return strings.HasPrefix(raw, "<!--") && strings.HasSuffix(raw, "-->") && len(raw) >= len("<!-->")
}

// tag keeps an allowed tag with filtered attributes, or escapes it.
func tag(raw string) string {
	if out := policy.Sanitize(raw); strings.HasPrefix(out, "<") {
		return out
	}
	return bracketEscaper.Replace(raw)
}
