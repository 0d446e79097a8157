package parser

import (
	"testing"

	"github.com/asps1917/zxcc/internal/ast"
	"github.com/asps1917/zxcc/internal/ctype"
	"github.com/asps1917/zxcc/internal/lexer"
	"github.com/asps1917/zxcc/internal/source"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	f := &source.File{Name: "t.c", Text: []byte(src + "\n")}
	return Parse(lexer.Tokenize(f))
}

func TestParseFunctionWithLocals(t *testing.T) {
	prog := parse(t, `
		int add(int a, int b) {
			int c;
			c = a + b;
			return c;
		}
	`)
	if len(prog.Funcs) != 1 {
		t.Fatalf("got %d funcs, want 1", len(prog.Funcs))
	}
	fn := prog.Funcs[0]
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v", fn)
	}
	if fn.StackSize%8 != 0 {
		t.Fatalf("stack size %d not 8-aligned", fn.StackSize)
	}
	for _, v := range fn.Locals {
		if v.Offset <= 0 || v.Offset > fn.StackSize {
			t.Errorf("local %s offset %d out of [1, %d]", v.Name, v.Offset, fn.StackSize)
		}
	}
}

func TestParseGlobalVarWithInitializer(t *testing.T) {
	prog := parse(t, `int g = 42;`)
	if len(prog.Globals) != 1 {
		t.Fatalf("got %d globals, want 1", len(prog.Globals))
	}
	g := prog.Globals[0]
	if len(g.Init) != 1 || g.Init[0].Val != 42 {
		t.Fatalf("init = %+v, want [{Val:42}]", g.Init)
	}
}

func TestParseStructMemberLayout(t *testing.T) {
	prog := parse(t, `
		struct P { char a; int b; };
		int f(void) {
			struct P p;
			p.b = 1;
			return p.b;
		}
	`)
	fn := prog.Funcs[0]
	st := fn.Locals[0].Ty
	if st.Kind != ctype.Struct {
		t.Fatalf("local type = %v, want struct", st.Kind)
	}
	b := st.FindMember("b")
	if b == nil || b.Offset != 4 {
		t.Fatalf("member b offset = %v, want 4 (after char a's padding)", b)
	}
}

func TestParsePointerArithmeticKeepsPtrAddDistinct(t *testing.T) {
	prog := parse(t, `
		int f(int *p) {
			return *(p + 1);
		}
	`)
	fn := prog.Funcs[0]
	ret := fn.Body
	if ret.Kind != ast.NdReturn {
		t.Fatalf("first stmt kind = %v, want NdReturn", ret.Kind)
	}
	deref := ret.Lhs
	if deref.Kind != ast.NdDeref || deref.Lhs.Kind != ast.NdPtrAdd {
		t.Fatalf("p + 1 inside *() should parse as NdDeref(NdPtrAdd), got %v(%v)", deref.Kind, deref.Lhs.Kind)
	}
}

func TestParseSwitchCaseChain(t *testing.T) {
	prog := parse(t, `
		int f(int x) {
			switch (x) {
			case 1:
				return 10;
			case 2:
				return 20;
			default:
				return 0;
			}
		}
	`)
	sw := prog.Funcs[0].Body
	if sw.Kind != ast.NdSwitch {
		t.Fatalf("kind = %v, want NdSwitch", sw.Kind)
	}
	var cases int
	for c := sw.CaseNext; c != nil; c = c.CaseNext {
		cases++
	}
	if cases != 2 {
		t.Fatalf("case chain length = %d, want 2", cases)
	}
	if sw.DefaultCase == nil {
		t.Fatal("expected a default case")
	}
	if sw.CaseEndLabel == "" {
		t.Fatal("switch should have a break/end label")
	}
}

func TestParseAddTypeIsIdempotentAcrossStatement(t *testing.T) {
	prog := parse(t, `int f(void) { return 1 + 2; }`)
	n := prog.Funcs[0].Body
	wantTy := n.Lhs.Ty
	ast.AddType(n)
	if n.Lhs.Ty != wantTy {
		t.Fatalf("re-running AddType changed the type: got %v want %v", n.Lhs.Ty, wantTy)
	}
}
