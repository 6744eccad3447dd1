package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"mdslides/internal/theme"
)

// span is a run of code text drawn in one role.
type span struct {
	text  string
	role  theme.Role
	faint bool
}

// highlight splits a code line into spans by token type. Unknown or empty
// languages give a single code-colored span.
func highlight(lang, line string) []span {
	plain := []span{{text: line, role: theme.Code}}
	if lang == "" {
		return plain
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return plain
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, line)
	if err != nil {
		return plain
	}
	var spans []span
	for tok := it(); tok != chroma.EOF; tok = it() {
		text := strings.ReplaceAll(tok.Value, "\n", "")
		if text == "" {
			continue
		}
		role, faint := tokenRole(tok.Type)
		spans = append(spans, span{text: text, role: role, faint: faint})
	}
	if len(spans) == 0 {
		return plain
	}
	return spans
}

func tokenRole(t chroma.TokenType) (theme.Role, bool) {
	switch {
	case t.InCategory(chroma.Comment):
		return theme.Text, true
	case t.InCategory(chroma.Keyword):
		return theme.Title, false
	case t.InSubCategory(chroma.LiteralString):
		return theme.Subtitle, false
	case t.InSubCategory(chroma.LiteralNumber):
		return theme.Output, false
	case t == chroma.NameFunction || t == chroma.NameBuiltin:
		return theme.Command, false
	}
	return theme.Code, false
}
