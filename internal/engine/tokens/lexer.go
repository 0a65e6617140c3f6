package tokens

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/zerr"
)

const punctChars = "+-*/%^!&|=<>@.,;:#$?~'"

type frame struct {
	delim    Delimiter
	start    int
	children []Tree
}

// Lex splits src into token trees. Whitespace and comments are dropped.
// Delimiters must be balanced.
func Lex(src string) ([]Tree, error) {
	l := &lexer{src: src}
	stack := []frame{{delim: NoDelimiter, start: -1}}

	for {
		if err := l.skipTrivia(); err != nil {
			return nil, err
		}
		if l.pos >= len(src) {
			break
		}

		c := src[l.pos]
		switch {
		case c == '(' || c == '[' || c == '{':
			stack = append(stack, frame{delim: delimiterOf(c), start: l.pos})
			l.pos++
		case c == ')' || c == ']' || c == '}':
			top := stack[len(stack)-1]
			if len(stack) == 1 || top.delim.Close() != string(c) {
				return nil, l.errorf(l.pos, "unexpected closing delimiter")
			}
			l.pos++
			stack = stack[:len(stack)-1]
			parent := &stack[len(stack)-1]
			parent.children = append(parent.children, Tree{
				Kind:     Group,
				Delim:    top.delim,
				Children: top.children,
				Start:    top.start,
				End:      l.pos,
			})
		default:
			tree, err := l.token()
			if err != nil {
				return nil, err
			}
			parent := &stack[len(stack)-1]
			parent.children = append(parent.children, tree)
		}
	}

	if len(stack) > 1 {
		return nil, l.errorf(stack[len(stack)-1].start, "unclosed delimiter")
	}
	return stack[0].children, nil
}

func delimiterOf(c byte) Delimiter {
	switch c {
	case '(':
		return Parenthesis
	case '{':
		return Brace
	default:
		return Bracket
	}
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) errorf(offset int, msg string) error {
	line := 1 + strings.Count(l.src[:offset], "\n")
	col := offset - strings.LastIndexByte(l.src[:offset], '\n')
	return errors.Join(domain.ErrLex, zerr.With(zerr.With(zerr.New(msg), "line", line), "column", col))
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case unicode.IsSpace(r):
			l.pos += size
		case r == '/' && l.peek(1) == '/':
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end + 1
			}
		case r == '/' && l.peek(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// skipBlockComment consumes a possibly nested /* */ comment.
func (l *lexer) skipBlockComment() error {
	start := l.pos
	depth := 0
	for l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '/' && l.peek(1) == '*':
			depth++
			l.pos += 2
		case l.src[l.pos] == '*' && l.peek(1) == '/':
			depth--
			l.pos += 2
			if depth == 0 {
				return nil
			}
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated block comment")
}

func (l *lexer) token() (Tree, error) {
	start := l.pos
	c := l.src[l.pos]
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	switch {
	case c == '"':
		if err := l.quoted('"'); err != nil {
			return Tree{}, err
		}
		return l.literal(start), nil
	case c == 'r' && (l.peek(1) == '"' || (l.peek(1) == '#' && (l.peek(2) == '"' || l.peek(2) == '#'))):
		l.pos++
		if err := l.raw(start); err != nil {
			return Tree{}, err
		}
		return l.literal(start), nil
	case c == 'b' && l.peek(1) == 'r' && (l.peek(2) == '"' || l.peek(2) == '#'):
		l.pos += 2
		if err := l.raw(start); err != nil {
			return Tree{}, err
		}
		return l.literal(start), nil
	case c == 'b' && (l.peek(1) == '"' || l.peek(1) == '\''):
		l.pos++
		if err := l.quoted(l.src[l.pos]); err != nil {
			return Tree{}, err
		}
		return l.literal(start), nil
	case c == 'r' && l.peek(1) == '#' && isIdentStart(l.runeAt(l.pos+2)):
		l.pos += 2
		l.identRest()
		return Tree{Kind: Ident, Text: l.src[start:l.pos], Start: start, End: l.pos}, nil
	case isIdentStart(r):
		l.pos += size
		l.identRest()
		return Tree{Kind: Ident, Text: l.src[start:l.pos], Start: start, End: l.pos}, nil
	case c >= '0' && c <= '9':
		l.number()
		return l.literal(start), nil
	case c == '\'':
		if l.isCharLiteral() {
			if err := l.quoted('\''); err != nil {
				return Tree{}, err
			}
			return l.literal(start), nil
		}
		return l.punct(), nil
	case strings.IndexByte(punctChars, c) >= 0:
		return l.punct(), nil
	default:
		return Tree{}, l.errorf(start, "unexpected character "+string(r))
	}
}

func (l *lexer) literal(start int) Tree {
	return Tree{Kind: Literal, Text: l.src[start:l.pos], Start: start, End: l.pos}
}

func (l *lexer) punct() Tree {
	start := l.pos
	l.pos++
	spacing := Alone
	if l.pos < len(l.src) && strings.IndexByte(punctChars, l.src[l.pos]) >= 0 {
		spacing = Joint
	}
	return Tree{Kind: Punct, Text: l.src[start:l.pos], Spacing: spacing, Start: start, End: l.pos}
}

func (l *lexer) runeAt(offset int) rune {
	if offset >= len(l.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(l.src[offset:])
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) identRest() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentContinue(r) {
			return
		}
		l.pos += size
	}
}

// number consumes an integer or float literal with an optional suffix.
func (l *lexer) number() {
	hex := l.src[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X')
	l.digits(hex)
	if l.peek(0) == '.' && l.peek(1) >= '0' && l.peek(1) <= '9' {
		l.pos++
		l.digits(hex)
	}
}

func (l *lexer) digits(hex bool) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case !hex && (c == 'e' || c == 'E') && (l.peek(1) == '+' || l.peek(1) == '-'):
			l.pos += 2
		case c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			l.pos++
		default:
			return
		}
	}
}

// isCharLiteral tells a character literal from a lifetime or label.
func (l *lexer) isCharLiteral() bool {
	if l.peek(1) == '\\' {
		return true
	}
	if l.pos+1 >= len(l.src) {
		return false
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos+1:])
	return l.peek(1+size) == '\''
}

// quoted consumes a literal delimited by quote, honoring backslash escapes.
func (l *lexer) quoted(quote byte) error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case quote:
			l.pos++
			return nil
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated literal")
}

// raw consumes the hashes and body of a raw string. l.pos is on the first '#' or '"'.
func (l *lexer) raw(start int) error {
	hashes := 0
	for l.peek(0) == '#' {
		hashes++
		l.pos++
	}
	if l.peek(0) != '"' {
		return l.errorf(start, "malformed raw string")
	}
	l.pos++
	terminator := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(l.src[l.pos:], terminator)
	if end < 0 {
		return l.errorf(start, "unterminated raw string")
	}
	l.pos += end + len(terminator)
	return nil
}
