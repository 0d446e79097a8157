package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/asps1917/zxcc/internal/lexer"
	"github.com/asps1917/zxcc/internal/parser"
	"github.com/asps1917/zxcc/internal/source"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	f := &source.File{Name: "t.c", Text: []byte(src + "\n")}
	prog := parser.Parse(lexer.Tokenize(f))
	var buf bytes.Buffer
	if err := Generate(&buf, prog); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return buf.String()
}

func TestGenerateEmitsIntelSyntaxPreamble(t *testing.T) {
	asm := compile(t, `int main(void) { return 0; }`)
	if !strings.HasPrefix(asm, ".intel_syntax noprefix\n") {
		t.Fatalf("asm does not start with the Intel-syntax directive:\n%s", asm)
	}
}

func TestGenerateFunctionPrologueEpilogue(t *testing.T) {
	asm := compile(t, `int f(void) { int x; x = 1; return x; }`)
	for _, want := range []string{"f:", "push rbp", "mov rbp, rsp", "sub rsp,", ".L.return.f:", "pop rbp", "ret"} {
		if !strings.Contains(asm, want) {
			t.Errorf("asm missing %q:\n%s", want, asm)
		}
	}
}

func TestGenerateStaticFunctionOmitsGlobalDirective(t *testing.T) {
	asm := compile(t, `static int helper(void) { return 1; } int f(void) { return helper(); }`)
	if strings.Contains(asm, ".global helper") {
		t.Fatalf("static function should not get .global:\n%s", asm)
	}
	if !strings.Contains(asm, ".global f") {
		t.Fatalf("non-static function should get .global:\n%s", asm)
	}
}

func TestGenerateDataSegmentOrdering(t *testing.T) {
	asm := compile(t, `int g1; int g2 = 7; int main(void) { return 0; }`)
	bss := strings.Index(asm, ".bss")
	data := strings.Index(asm, ".data")
	text := strings.Index(asm, ".text")
	if !(bss >= 0 && bss < data && data < text) {
		t.Fatalf("expected .bss, .data, .text in order, got offsets %d %d %d:\n%s", bss, data, text, asm)
	}
}

func TestGenerateStringLiteralGetsDataLabel(t *testing.T) {
	asm := compile(t, `int puts(char *s); int main(void) { puts("hi"); return 0; }`)
	if !strings.Contains(asm, ".L.data.") {
		t.Fatalf("string literal should be backed by a .L.data.N global:\n%s", asm)
	}
}

func TestGenerateCallAlignsStackAndZeroesRaxForVariadicSafety(t *testing.T) {
	asm := compile(t, `int printf(char *fmt); int main(void) { printf("x"); return 0; }`)
	if !strings.Contains(asm, "and rax, 15") {
		t.Fatalf("call site should branch on 16-byte stack alignment:\n%s", asm)
	}
	if !strings.Contains(asm, "  mov rax, 0\n  call printf\n") {
		t.Fatalf("call site should zero rax right before the call:\n%s", asm)
	}
}

func TestGenerateSwitchEmitsLinearCompareChain(t *testing.T) {
	asm := compile(t, `
		int f(int x) {
			switch (x) {
			case 1: return 10;
			case 2: return 20;
			default: return 0;
			}
		}
	`)
	if strings.Count(asm, "je .Lcase") < 2 {
		t.Fatalf("expected two case-label jumps in the switch chain:\n%s", asm)
	}
}

func TestGenerateVariadicFunctionReservesSaveArea(t *testing.T) {
	asm := compile(t, `
		int f(int n, ...) {
			return n;
		}
	`)
	if !strings.Contains(asm, "f:") {
		t.Fatalf("missing function label:\n%s", asm)
	}
	for _, reg := range []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"} {
		if !strings.Contains(asm, "], "+reg+"\n") {
			t.Errorf("save area should hold %s:\n%s", reg, asm)
		}
	}
}
