package payload

import (
	"strings"

	"go.trai.ch/wasmbed/internal/engine/tokens"
)

// Reflow rebuilds configuration text from attribute tokens.
//
// Token trees carry no line information, so line breaks are restored from
// token order: a table header starts a new line unless it is a value, and a
// key starts a new line after a value. Punctuation stays on its line, except
// after a group where only a comma is kept, so inline tables remain on one line.
func Reflow(trees []tokens.Tree) string {
	var b strings.Builder
	reflow(&b, trees)
	return b.String()
}

func reflow(b *strings.Builder, trees []tokens.Tree) {
	for i := range trees {
		t := &trees[i]
		if i > 0 && breaksBefore(&trees[i-1], t) {
			b.WriteByte('\n')
		}
		if t.Kind == tokens.Group {
			b.WriteString(t.Delim.Open())
			reflow(b, t.Children)
			b.WriteString(t.Delim.Close())
			continue
		}
		b.WriteString(t.Text)
	}
}

func breaksBefore(prev, t *tokens.Tree) bool {
	switch t.Kind {
	case tokens.Group:
		return prev.Kind != tokens.Punct
	case tokens.Ident, tokens.Literal:
		return prev.Kind == tokens.Group || isValue(prev)
	default:
		return prev.Kind == tokens.Group && !t.IsPunct(",")
	}
}

// isValue reports whether t ends a key/value pair. Booleans lex as identifiers.
func isValue(t *tokens.Tree) bool {
	return t.Kind == tokens.Literal || t.IsIdent("true") || t.IsIdent("false")
}
