package searchfn

import (
	"context"
	"strings"
)

// The directive prefix as it appears in wikitext.
const directivePrefix = "{{#search:"

// ReplaceDirectives expands every {{#search:...}} directive found in
// text and returns the rewritten wikitext.
//
// This is a preview helper: a real host wires Render into its own
// wikitext parser and never goes through here. The scanner understands
// nested transclusions and piped links well enough for preview purposes,
// nothing more.
func (pf *ParserFunction) ReplaceDirectives(ctx context.Context, page, lang, text string) string {
	var b strings.Builder

	for {
		i := strings.Index(text, directivePrefix)
		if i < 0 {
			b.WriteString(text)
			break
		}

		b.WriteString(text[:i])
		body, rest, ok := scanDirective(text[i:])
		if !ok {
			// Unterminated directive; emit it verbatim.
			b.WriteString(text[i:])
			break
		}

		b.WriteString(pf.Render(ctx, Call{
			Page: page,
			Lang: lang,
			Args: splitArgs(body),
		}))
		text = rest
	}

	return b.String()
}

// scanDirective consumes one directive starting at the prefix and
// returns its argument body and the remaining text.
func scanDirective(text string) (body, rest string, ok bool) {
	depth := 1
	for i := len(directivePrefix); i < len(text); i++ {
		switch {
		case strings.HasPrefix(text[i:], "{{"):
			depth++
			i++
		case strings.HasPrefix(text[i:], "}}"):
			depth--
			if depth == 0 {
				return text[len(directivePrefix):i], text[i+2:], true
			}
			i++
		}
	}
	return "", "", false
}

// splitArgs splits a directive body on pipes, ignoring pipes nested in
// transclusions or links.
func splitArgs(body string) []string {
	var args []string
	var braces, brackets int
	start := 0

	for i := 0; i < len(body); i++ {
		switch {
		case strings.HasPrefix(body[i:], "{{"):
			braces++
			i++
		case strings.HasPrefix(body[i:], "}}"):
			braces--
			i++
		case strings.HasPrefix(body[i:], "[["):
			brackets++
			i++
		case strings.HasPrefix(body[i:], "]]"):
			brackets--
			i++
		case body[i] == '|' && braces == 0 && brackets == 0:
			args = append(args, body[start:i])
			start = i + 1
		}
	}

	return append(args, body[start:])
}
