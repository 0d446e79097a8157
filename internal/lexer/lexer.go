// Package lexer turns a preprocessed C translation unit into the token
// chain the parser consumes. It never backtracks; each fatal condition
// (unterminated literal, invalid character) aborts the compilation
// through source.File.Fatal.
package lexer

import (
	"github.com/asps1917/zxcc/internal/source"
	"github.com/asps1917/zxcc/internal/token"
)

// keywords are matched only at identifier boundaries; everything here
// becomes a Reserved token except "return", which gets its own Kind so
// the parser can recognize it without a string compare.
var keywords = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "do": true,
	"switch": true, "case": true, "default": true,
	"break": true, "continue": true, "goto": true,
	"void": true, "_Bool": true, "char": true, "short": true, "int": true, "long": true,
	"struct": true, "enum": true, "typedef": true, "static": true, "extern": true,
	"sizeof": true, "_Alignof": true,
}

// punctuators3/punctuators2 are tried longest-first so that e.g. "<<="
// isn't lexed as "<<" followed by "=".
var punctuators3 = []string{"<<=", ">>=", "..."}
var punctuators2 = []string{
	"==", "!=", "<=", ">=", "->", "++", "--",
	"+=", "-=", "*=", "/=", "&&", "||", "<<", ">>", "&=", "|=", "^=",
}
var punctuators1 = "+-*/(){}[]<>;:=,.&!?~|^"

type lexer struct {
	file *source.File
	src  []byte
	pos  int
}

// Tokenize lexes the whole file and returns the head of the token chain.
func Tokenize(f *source.File) *token.Token {
	l := &lexer{file: f, src: f.Text}
	head := &token.Token{}
	cur := head
	for {
		cur.Next = l.next()
		cur = cur.Next
		if cur.Kind == token.EOF {
			break
		}
	}
	return head.Next
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }

// skip advances past whitespace and comments. An unterminated block
// comment is fatal.
func (l *lexer) skip() {
	for {
		if isSpace(l.peek()) {
			l.pos++
			continue
		}
		if l.peek() == '/' && l.peekAt(1) == '/' {
			for l.peek() != '\n' && l.pos < len(l.src) {
				l.pos++
			}
			continue
		}
		if l.peek() == '/' && l.peekAt(1) == '*' {
			start := l.pos
			l.pos += 2
			for !(l.peek() == '*' && l.peekAt(1) == '/') {
				if l.pos >= len(l.src) {
					l.file.Fatal(start, "unterminated block comment")
				}
				l.pos++
			}
			l.pos += 2
			continue
		}
		return
	}
}

// next lexes a single token starting at the current position.
func (l *lexer) next() *token.Token {
	l.skip()
	pos := l.pos

	if l.pos >= len(l.src) {
		return &token.Token{Kind: token.EOF, Pos: pos, File: l.file, Lexeme: ""}
	}

	c := l.peek()

	if isAlpha(c) {
		return l.ident(pos)
	}
	if isDigit(c) {
		return l.number(pos)
	}
	if c == '\'' {
		return l.char(pos)
	}
	if c == '"' {
		return l.str(pos)
	}

	for _, p := range punctuators3 {
		if l.match(p) {
			l.pos += 3
			return &token.Token{Kind: token.Reserved, Lexeme: p, Pos: pos, File: l.file}
		}
	}
	for _, p := range punctuators2 {
		if l.match(p) {
			l.pos += 2
			return &token.Token{Kind: token.Reserved, Lexeme: p, Pos: pos, File: l.file}
		}
	}
	for i := 0; i < len(punctuators1); i++ {
		if c == punctuators1[i] {
			l.pos++
			return &token.Token{Kind: token.Reserved, Lexeme: string(c), Pos: pos, File: l.file}
		}
	}

	l.file.Fatal(pos, "invalid character '%c'", c)
	panic("unreachable")
}

func (l *lexer) match(s string) bool {
	if l.pos+len(s) > len(l.src) {
		return false
	}
	return string(l.src[l.pos:l.pos+len(s)]) == s
}

func (l *lexer) ident(pos int) *token.Token {
	start := l.pos
	for isAlnum(l.peek()) {
		l.pos++
	}
	name := string(l.src[start:l.pos])
	if name == "return" {
		return &token.Token{Kind: token.Return, Lexeme: name, Pos: pos, File: l.file}
	}
	if keywords[name] {
		return &token.Token{Kind: token.Reserved, Lexeme: name, Pos: pos, File: l.file}
	}
	return &token.Token{Kind: token.Ident, Lexeme: name, Pos: pos, File: l.file}
}

// number lexes an integer literal, selecting the base from the prefix
// (0x/0X hex, 0b/0B binary, leading 0 octal, otherwise decimal) and
// rejecting trailing alphanumerics so "123abc" is not silently truncated.
func (l *lexer) number(pos int) *token.Token {
	base := 10
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		base = 16
		l.pos += 2
	} else if l.peek() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		base = 2
		l.pos += 2
	} else if l.peek() == '0' && isDigit(l.peekAt(1)) {
		base = 8
		l.pos++
	}

	var val int64
	digits := 0
	for {
		d, ok := digitValue(l.peek())
		if !ok || d >= base {
			break
		}
		val = val*int64(base) + int64(d)
		l.pos++
		digits++
	}
	if digits == 0 && base != 10 {
		l.file.Fatal(pos, "invalid integer literal")
	}
	if isAlnum(l.peek()) {
		l.file.Fatal(l.pos, "invalid digit in integer literal")
	}
	return &token.Token{Kind: token.Num, Val: val, Lexeme: string(l.src[pos:l.pos]), Pos: pos, File: l.file}
}

func digitValue(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	}
	return 0, false
}

// escape decodes the character after a backslash per spec: a fixed set
// maps to control characters, any other character maps to itself.
func (l *lexer) escape() int64 {
	c := l.peek()
	l.pos++
	switch c {
	case 'a':
		return 7
	case 'b':
		return 8
	case 't':
		return 9
	case 'n':
		return 10
	case 'v':
		return 11
	case 'f':
		return 12
	case 'r':
		return 13
	case 'e':
		return 27
	case '0':
		return 0
	default:
		return int64(c)
	}
}

func (l *lexer) char(pos int) *token.Token {
	l.pos++ // opening '
	var val int64
	if l.pos >= len(l.src) {
		l.file.Fatal(pos, "unterminated character literal")
	}
	if l.peek() == '\\' {
		l.pos++
		val = l.escape()
	} else {
		val = int64(l.peek())
		l.pos++
	}
	if l.peek() != '\'' {
		l.file.Fatal(pos, "unterminated character literal")
	}
	l.pos++ // closing '
	return &token.Token{Kind: token.Num, Val: val, Lexeme: string(l.src[pos:l.pos]), Pos: pos, File: l.file}
}

// maxStringLiteral bounds the internal decode buffer, per spec ("≤1024
// bytes"); it does not bound the source text of the literal itself.
const maxStringLiteral = 1024

func (l *lexer) str(pos int) *token.Token {
	l.pos++ // opening "
	buf := make([]byte, 0, 32)
	for {
		if l.pos >= len(l.src) || l.peek() == '\n' {
			l.file.Fatal(pos, "unterminated string literal")
		}
		if l.peek() == '"' {
			break
		}
		if len(buf) >= maxStringLiteral-1 {
			l.file.Fatal(pos, "string literal too large")
		}
		if l.peek() == '\\' {
			l.pos++
			buf = append(buf, byte(l.escape()))
			continue
		}
		buf = append(buf, l.peek())
		l.pos++
	}
	l.pos++ // closing "
	buf = append(buf, 0)
	return &token.Token{
		Kind:   token.Str,
		Str:    buf,
		StrLen: len(buf),
		Lexeme: string(l.src[pos:l.pos]),
		Pos:    pos,
		File:   l.file,
	}
}
