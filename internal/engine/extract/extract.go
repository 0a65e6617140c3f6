// Package extract locates annotated module declarations in host source text.
package extract

import (
	"strings"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/engine/tokens"
	"go.trai.ch/zerr"
)

// AttributeName is the identifier that marks a module for embedding.
const AttributeName = "wasmbed"

// Annotation is one marked module and the payload carried by its attribute.
type Annotation struct {
	// Payload holds the trees inside the attribute's parentheses. It is empty
	// for a bare attribute.
	Payload     []tokens.Tree
	Declaration domain.ModuleDeclaration
}

// Find returns every annotated module in src in source order.
// Modules nested inside an annotated body are left to that body's own build.
func Find(src string) ([]Annotation, error) {
	trees, err := tokens.Lex(src)
	if err != nil {
		return nil, err
	}
	var out []Annotation
	if err := walk(src, trees, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(src string, trees []tokens.Tree, out *[]Annotation) error {
	for i := 0; i < len(trees); i++ {
		payload, ok := annotationAt(trees, i)
		if !ok {
			if trees[i].Kind == tokens.Group {
				if err := walk(src, trees[i].Children, out); err != nil {
					return err
				}
			}
			continue
		}

		decl, consumed, err := declaration(src, trees[i+2:])
		if err != nil {
			return zerr.With(err, "offset", trees[i].Start)
		}
		decl.Span.AttrStart = trees[i].Start
		*out = append(*out, Annotation{Payload: payload, Declaration: decl})
		i += 2 + consumed
	}
	return nil
}

// annotationAt reports whether trees[i:] starts with #[wasmbed] or #[wasmbed(...)].
func annotationAt(trees []tokens.Tree, i int) ([]tokens.Tree, bool) {
	if i+1 >= len(trees) || !trees[i].IsPunct("#") || !trees[i+1].IsGroup(tokens.Bracket) {
		return nil, false
	}
	inner := trees[i+1].Children
	if len(inner) == 0 || !inner[0].IsIdent(AttributeName) {
		return nil, false
	}
	switch {
	case len(inner) == 1:
		return nil, true
	case len(inner) == 2 && inner[1].IsGroup(tokens.Parenthesis):
		return inner[1].Children, true
	default:
		return nil, false
	}
}

// declaration reads the item following an annotation. It returns the index of
// the body group within items.
func declaration(src string, items []tokens.Tree) (domain.ModuleDeclaration, int, error) {
	if len(items) == 0 {
		return domain.ModuleDeclaration{}, 0, zerr.Wrap(domain.ErrMissingModuleBody, "annotation is not followed by an item")
	}

	name := ""
	for j := 0; j < len(items); j++ {
		t := items[j]
		switch {
		case t.IsPunct("#") && j+1 < len(items) && items[j+1].IsGroup(tokens.Bracket):
			j++
		case t.Kind == tokens.Ident:
			if t.Text == "pub" || t.Text == "mod" || name != "" {
				continue
			}
			name = strings.TrimPrefix(t.Text, "r#")
		case t.IsGroup(tokens.Brace):
			if name == "" {
				return domain.ModuleDeclaration{}, 0, zerr.Wrap(domain.ErrMissingModuleName, "module has no name")
			}
			return domain.ModuleDeclaration{
				Name: name,
				Body: strings.TrimSpace(src[t.Start+1 : t.End-1]),
				Span: domain.DeclarationSpan{
					ItemStart: items[0].Start,
					BodyOpen:  t.Start,
					BodyClose: t.End - 1,
				},
			}, j, nil
		case t.IsPunct(";"):
			return domain.ModuleDeclaration{}, 0, zerr.With(zerr.Wrap(domain.ErrMissingModuleBody, "module has no body"), "module", name)
		}
	}
	return domain.ModuleDeclaration{}, 0, zerr.With(zerr.Wrap(domain.ErrMissingModuleBody, "module has no body"), "module", name)
}
