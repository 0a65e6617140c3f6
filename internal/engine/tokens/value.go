package tokens

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"go.trai.ch/zerr"
)

// StringValue returns the decoded contents of a string literal.
func (t Tree) StringValue() (string, error) {
	if !t.IsString() {
		return "", zerr.With(zerr.New("not a string literal"), "token", t.Text)
	}
	if t.Text[0] == 'r' {
		body := strings.TrimLeft(t.Text[1:], "#")
		hashes := len(t.Text) - 1 - len(body)
		return body[1 : len(body)-1-hashes], nil
	}
	return unescape(t.Text[1 : len(t.Text)-1])
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", zerr.New("dangling escape")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		case 'x':
			if i+2 >= len(s) {
				return "", zerr.New("short hex escape")
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil || v > 0x7f {
				return "", zerr.With(zerr.New("invalid hex escape"), "escape", s[i-1:i+3])
			}
			b.WriteByte(byte(v))
			i += 2
		case 'u':
			end := strings.IndexByte(s[i:], '}')
			if i+1 >= len(s) || s[i+1] != '{' || end < 0 {
				return "", zerr.New("malformed unicode escape")
			}
			digits := strings.ReplaceAll(s[i+2:i+end], "_", "")
			v, err := strconv.ParseUint(digits, 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", zerr.With(zerr.New("invalid unicode escape"), "escape", s[i-1:i+end+1])
			}
			b.WriteRune(rune(v))
			i += end
		case '\n':
			// Line continuation skips the newline and the next line's leading whitespace.
			for i+1 < len(s) && strings.IndexByte(" \t\r\n", s[i+1]) >= 0 {
				i++
			}
		default:
			return "", zerr.With(zerr.New("unknown escape"), "escape", s[i-1:i+1])
		}
	}
	return b.String(), nil
}
