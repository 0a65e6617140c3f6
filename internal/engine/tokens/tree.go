// Package tokens splits host source text into token trees.
package tokens

// Kind classifies a token tree.
type Kind uint8

const (
	// Ident is an identifier or keyword, including raw identifiers such as r#type.
	Ident Kind = iota
	// Literal is a string, byte string, character or numeric literal.
	Literal
	// Punct is a single punctuation character.
	Punct
	// Group is a delimited sequence of token trees.
	Group
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Ident:
		return "ident"
	case Literal:
		return "literal"
	case Punct:
		return "punct"
	case Group:
		return "group"
	default:
		return "unknown"
	}
}

// Delimiter is the bracket pair enclosing a Group.
type Delimiter uint8

const (
	// NoDelimiter marks non-group trees.
	NoDelimiter Delimiter = iota
	// Parenthesis is ( ... ).
	Parenthesis
	// Brace is { ... }.
	Brace
	// Bracket is [ ... ].
	Bracket
)

// Open returns the opening character of the delimiter.
func (d Delimiter) Open() string {
	switch d {
	case Parenthesis:
		return "("
	case Brace:
		return "{"
	case Bracket:
		return "["
	default:
		return ""
	}
}

// Close returns the closing character of the delimiter.
func (d Delimiter) Close() string {
	switch d {
	case Parenthesis:
		return ")"
	case Brace:
		return "}"
	case Bracket:
		return "]"
	default:
		return ""
	}
}

// Spacing tells whether a Punct is immediately followed by another Punct.
type Spacing uint8

const (
	// Alone is followed by whitespace, a non-punct token or the end of input.
	Alone Spacing = iota
	// Joint is followed directly by another punctuation character.
	Joint
)

// Tree is a single token or a delimited group of tokens.
type Tree struct {
	Kind Kind
	// Text is the source text of an Ident, Literal or Punct. It is empty for groups.
	Text string
	// Delim is set for groups.
	Delim Delimiter
	// Spacing is set for punctuation.
	Spacing Spacing
	// Children holds the trees between a group's delimiters.
	Children []Tree
	// Start is the byte offset of the first character. For groups it is the opening delimiter.
	Start int
	// End is the byte offset just past the tree. For groups it is past the closing delimiter.
	End int
}

// IsIdent reports whether t is the identifier name.
func (t Tree) IsIdent(name string) bool {
	return t.Kind == Ident && t.Text == name
}

// IsPunct reports whether t is the punctuation character ch.
func (t Tree) IsPunct(ch string) bool {
	return t.Kind == Punct && t.Text == ch
}

// IsGroup reports whether t is a group delimited by d.
func (t Tree) IsGroup(d Delimiter) bool {
	return t.Kind == Group && t.Delim == d
}

// IsString reports whether t is a string literal, quoted or raw.
func (t Tree) IsString() bool {
	if t.Kind != Literal || t.Text == "" {
		return false
	}
	switch t.Text[0] {
	case '"':
		return true
	case 'r':
		return len(t.Text) > 1 && (t.Text[1] == '"' || t.Text[1] == '#')
	default:
		return false
	}
}
