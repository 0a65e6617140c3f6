// Package embed renders build artifacts as constants inside module declarations.
package embed

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	bytesPerLine = 16
	indentUnit   = "    "
)

// Renderer emits constant bindings under one naming convention.
type Renderer struct {
	names  domain.ConstantNames
	loader domain.LoaderEncoding
}

// NewRenderer creates a Renderer.
func NewRenderer(convention domain.Convention, loader domain.LoaderEncoding) *Renderer {
	return &Renderer{names: convention.Names(), loader: loader}
}

// Declaration returns the declaration text of decl from src with the artifact
// constants inserted before the closing brace of its body. The text before the
// insertion point is left untouched.
func (r *Renderer) Declaration(src string, decl domain.ModuleDeclaration, artifact *domain.Artifact) (string, error) {
	span := decl.Span
	if span.ItemStart > span.BodyOpen || span.BodyOpen >= span.BodyClose || span.BodyClose >= len(src) ||
		src[span.BodyOpen] != '{' || src[span.BodyClose] != '}' {
		return "", zerr.With(zerr.Wrap(domain.ErrExpansionFailed, "declaration does not match source"), "module", decl.Name)
	}
	lineStart := strings.LastIndexByte(src[:span.BodyClose], '\n') + 1

	if lineStart > span.BodyOpen && strings.TrimSpace(src[lineStart:span.BodyClose]) == "" {
		closeIndent := src[lineStart:span.BodyClose]
		unit := bodyUnit(src[span.BodyOpen+1:span.BodyClose], closeIndent)
		return src[span.ItemStart:lineStart] +
			r.Constants(closeIndent+unit, unit, artifact) +
			closeIndent + "}", nil
	}

	closeIndent := leadingWhitespace(src[lineStart:])
	unit := bodyUnit(src[span.BodyOpen+1:span.BodyClose], closeIndent)
	return strings.TrimRight(src[span.ItemStart:span.BodyClose], " \t") + "\n" +
		r.Constants(closeIndent+unit, unit, artifact) +
		closeIndent + "}", nil
}

// Constants renders the binary and loader bindings, one per line, each
// prefixed with indent and terminated by a newline. unit is one indentation step.
func (r *Renderer) Constants(indent, unit string, artifact *domain.Artifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s%sconst %s: [u8; %d] = %s;\n",
		indent, r.names.Visibility, r.names.Binary, len(artifact.Binary), ByteArray(indent, unit, artifact.Binary))

	if r.loader == domain.LoaderBytes {
		fmt.Fprintf(&b, "%s%sconst %s: [u8; %d] = %s;\n",
			indent, r.names.Visibility, r.names.Loader, len(artifact.Loader), ByteArray(indent, unit, artifact.Loader))
	} else {
		fmt.Fprintf(&b, "%s%sconst %s: &str = %s;\n",
			indent, r.names.Visibility, r.names.Loader, StringLiteral(string(artifact.Loader)))
	}
	return b.String()
}

// ByteArray renders data as an array expression with a fixed number of bytes
// per line. indent is the indentation of the line holding the opening bracket.
func ByteArray(indent, unit string, data []byte) string {
	if len(data) == 0 {
		return "[]"
	}

	var b strings.Builder
	b.WriteString("[\n")
	for chunk := range slices.Chunk(data, bytesPerLine) {
		b.WriteString(indent + unit)
		for i, v := range chunk {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(int(v)))
		}
		b.WriteString(",\n")
	}
	b.WriteString(indent + "]")
	return b.String()
}

// StringLiteral renders s as a quoted string literal.
// s must be valid UTF-8.
func StringLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Replacement swaps the annotated declaration at Span for Text.
type Replacement struct {
	Span domain.DeclarationSpan
	Text string
}

// Splice applies replacements to src. Each replacement covers the annotation
// and the declaration it marks. Replacements must not overlap.
func Splice(src string, replacements []Replacement) string {
	sorted := slices.Clone(replacements)
	slices.SortFunc(sorted, func(a, b Replacement) int {
		return a.Span.AttrStart - b.Span.AttrStart
	})

	var b strings.Builder
	b.Grow(len(src))
	pos := 0
	for _, rep := range sorted {
		b.WriteString(src[pos:rep.Span.AttrStart])
		b.WriteString(rep.Text)
		pos = rep.Span.ItemEnd()
	}
	b.WriteString(src[pos:])
	return b.String()
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// bodyUnit returns the indentation step used inside body: the first indented
// line's whitespace beyond closeIndent. Bodies without such a line fall back
// to the style of closeIndent.
func bodyUnit(body, closeIndent string) string {
	lines := strings.Split(body, "\n")
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := leadingWhitespace(line)
		if len(lead) > len(closeIndent) && strings.HasPrefix(lead, closeIndent) {
			return lead[len(closeIndent):]
		}
		break
	}
	return unitFor(closeIndent)
}

// unitFor picks the indentation step matching the surrounding indent style.
func unitFor(indent string) string {
	if strings.Contains(indent, "\t") {
		return "\t"
	}
	return indentUnit
}
