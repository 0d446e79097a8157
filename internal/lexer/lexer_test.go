package lexer

import (
	"testing"

	"github.com/asps1917/zxcc/internal/source"
	"github.com/asps1917/zxcc/internal/token"
)

func tokenize(t *testing.T, src string) *token.Token {
	t.Helper()
	f := &source.File{Name: "t.c", Text: []byte(src + "\n")}
	return Tokenize(f)
}

func kinds(tok *token.Token) []token.Kind {
	var ks []token.Kind
	for t := tok; t.Kind != token.EOF; t = t.Next {
		ks = append(ks, t.Kind)
	}
	return ks
}

func TestTokenizePunctuatorsLongestMatchFirst(t *testing.T) {
	tok := tokenize(t, "a <<= b")
	if tok.Next == nil || tok.Next.Lexeme != "<<=" {
		t.Fatalf("got lexeme %q, want \"<<=\"", tok.Next.Lexeme)
	}
}

func TestTokenizeKeywordReturnGetsOwnKind(t *testing.T) {
	tok := tokenize(t, "return 0;")
	if tok.Kind != token.Return {
		t.Fatalf("kind = %v, want token.Return", tok.Kind)
	}
}

func TestTokenizeIntegerLiteralBases(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"0x1F", 31},
		{"0b101", 5},
		{"017", 15},
		{"42", 42},
	}
	for _, tt := range tests {
		tok := tokenize(t, tt.src+";")
		if tok.Kind != token.Num || tok.Val != tt.want {
			t.Errorf("tokenize(%q) = {kind:%v val:%d}, want {Num %d}", tt.src, tok.Kind, tok.Val, tt.want)
		}
	}
}

func TestTokenizeCharLiteralEscapes(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{`'a'`, 'a'},
		{`'\n'`, '\n'},
		{`'\0'`, 0},
		{`'\t'`, '\t'},
	}
	for _, tt := range tests {
		tok := tokenize(t, tt.src+";")
		if tok.Kind != token.Num || tok.Val != tt.want {
			t.Errorf("tokenize(%q) = %d, want %d", tt.src, tok.Val, tt.want)
		}
	}
}

func TestTokenizeStringLiteral(t *testing.T) {
	tok := tokenize(t, `"hi\n"`)
	if tok.Kind != token.Str {
		t.Fatalf("kind = %v, want token.Str", tok.Kind)
	}
	want := "hi\n\x00"
	if string(tok.Str) != want {
		t.Fatalf("str = %q, want %q", tok.Str, want)
	}
}

func TestTokenizeSkipsLineAndBlockComments(t *testing.T) {
	tok := tokenize(t, "// a comment\nint /* inline */ x;")
	if !tok.Is("int") {
		t.Fatalf("first token = %q, want \"int\"", tok.Lexeme)
	}
}

func TestTokenizeModuloIsNotAPunctuator(t *testing.T) {
	defer func() {
		r := recover()
		if _, ok := r.(*source.Error); !ok {
			t.Fatalf("recovered %v, want a *source.Error for '%%'", r)
		}
	}()
	tokenize(t, "%")
	t.Fatal("expected tokenize to panic on '%', which this grammar has no punctuator for")
}

func TestTokenizeChainEndsInEOF(t *testing.T) {
	tok := tokenize(t, "int x;")
	ks := kinds(tok)
	if len(ks) == 0 {
		t.Fatal("expected at least one token before EOF")
	}
	last := tok
	for last.Next != nil {
		last = last.Next
	}
	if last.Kind != token.EOF {
		t.Fatalf("last token kind = %v, want token.EOF", last.Kind)
	}
}
