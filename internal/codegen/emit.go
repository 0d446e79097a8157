// Package codegen walks the typed AST in tree order and emits
// Intel-syntax x86-64 assembly. The machine stack doubles as the
// evaluation stack: every expression leaves exactly one 8-byte value on
// top of it, and every statement is balanced.
package codegen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/asps1917/zxcc/internal/ast"
)

// Emitter owns the output stream and the handful of pieces of state a
// single-pass tree walk needs: a unique-label counter, the label pair
// for the nearest enclosing loop/switch, and the function currently
// being compiled (for its return label and varargs save area).
type Emitter struct {
	out      *bufio.Writer
	labelSeq int

	breakLabel    []string
	continueLabel []string

	curFunc *ast.Function
}

// New wraps w for emission.
func New(w io.Writer) *Emitter {
	return &Emitter{out: bufio.NewWriter(w)}
}

// Generate emits the whole program and flushes the output.
func Generate(w io.Writer, prog *ast.Program) error {
	e := New(w)
	e.Raw(".intel_syntax noprefix")
	e.data(prog.Globals)
	for _, fn := range prog.Funcs {
		e.function(fn)
	}
	return e.out.Flush()
}

// nextLabel produces the zero-padded labels used for structured control
// flow (.Lbegin001, .Lend002, .Lelse003, .Lcontinue004, ...).
func (e *Emitter) nextLabel(prefix string) string {
	e.labelSeq++
	return fmt.Sprintf("%s%03d", prefix, e.labelSeq)
}

// nextLabelN produces the unpadded labels used for call sites and
// short-circuit branches (.L.call.N, .L.end.N, .L.true.N, .L.false.N);
// prefix carries its own trailing separator.
func (e *Emitter) nextLabelN(prefix string) string {
	e.labelSeq++
	return fmt.Sprintf("%s%d", prefix, e.labelSeq)
}

// --- low-level emission helpers -----------------------------------------

func (e *Emitter) Raw(line string) {
	fmt.Fprintf(e.out, "%s\n", line)
}

func (e *Emitter) Directive(dir string, args ...interface{}) {
	if len(args) == 0 {
		fmt.Fprintf(e.out, "  %s\n", dir)
		return
	}
	fmt.Fprintf(e.out, "  %s %s\n", dir, joinArgs(args))
}

func (e *Emitter) Label(name string) {
	fmt.Fprintf(e.out, "%s:\n", name)
}

func (e *Emitter) Instr0(op string) {
	fmt.Fprintf(e.out, "  %s\n", op)
}

func (e *Emitter) Instr1(op string, arg interface{}) {
	fmt.Fprintf(e.out, "  %s %v\n", op, arg)
}

func (e *Emitter) Instr2(op string, dst, src interface{}) {
	fmt.Fprintf(e.out, "  %s %v, %v\n", op, dst, src)
}

func joinArgs(args []interface{}) string {
	s := fmt.Sprint(args[0])
	for _, a := range args[1:] {
		s += fmt.Sprintf(", %v", a)
	}
	return s
}

func (e *Emitter) push() {
	e.Instr1("push", "rax")
}

func (e *Emitter) pop(reg string) {
	e.Instr1("pop", reg)
}

// --- data segment ---------------------------------------------------------

func (e *Emitter) data(globals []*ast.Var) {
	var bss, data []*ast.Var
	for _, v := range globals {
		if v.Init == nil {
			bss = append(bss, v)
		} else {
			data = append(data, v)
		}
	}

	if len(bss) > 0 {
		e.Directive(".bss")
		for _, v := range bss {
			e.Directive(".align", v.Ty.Align)
			e.globalLabel(v)
			e.Instr1(".zero", v.Ty.Size)
		}
	}

	if len(data) > 0 {
		e.Directive(".data")
		for _, v := range data {
			e.Directive(".align", v.Ty.Align)
			e.globalLabel(v)
			for _, r := range v.Init {
				e.initRecord(r)
			}
		}
	}

	e.Directive(".text")
}

func (e *Emitter) globalLabel(v *ast.Var) {
	if !v.IsStatic {
		e.Directive(".global", v.Name)
	}
	e.Label(v.Name)
}

func (e *Emitter) initRecord(r *ast.InitRecord) {
	if r.Label != "" {
		if r.Addend != 0 {
			e.Instr1(".quad", fmt.Sprintf("%s+%d", r.Label, r.Addend))
		} else {
			e.Instr1(".quad", r.Label)
		}
		return
	}
	switch r.Sz {
	case 1:
		e.Instr1(".byte", r.Val)
	case 2:
		e.Instr1(".2byte", r.Val)
	case 4:
		e.Instr1(".4byte", r.Val)
	case 8:
		e.Instr1(".8byte", r.Val)
	default:
		e.Instr1(".zero", r.Sz)
	}
}

// --- function prologue / epilogue -----------------------------------------

var argReg1 = []string{"dil", "sil", "dl", "cl", "r8b", "r9b"}
var argReg2 = []string{"di", "si", "dx", "cx", "r8w", "r9w"}
var argReg4 = []string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}
var argReg8 = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

func (e *Emitter) function(fn *ast.Function) {
	e.curFunc = fn

	if !fn.IsStatic {
		e.Directive(".global", fn.Name)
	}
	e.Label(fn.Name)
	e.Instr1("push", "rbp")
	e.Instr2("mov", "rbp", "rsp")
	e.Instr2("sub", "rsp", fn.StackSize)

	if fn.HasVarargs {
		e.emitVarargsSaveArea(fn)
	}

	for i, v := range fn.Params {
		if i >= 6 {
			break
		}
		var reg string
		switch v.Ty.Size {
		case 1:
			reg = argReg1[i]
		case 2:
			reg = argReg2[i]
		case 4:
			reg = argReg4[i]
		default:
			reg = argReg8[i]
		}
		e.Instr2("mov", slot(v.Offset), reg)
	}

	for n := fn.Body; n != nil; n = n.Next {
		e.stmt(n)
	}

	e.Label(".L.return." + fn.Name)
	e.Instr2("mov", "rsp", "rbp")
	e.Instr1("pop", "rbp")
	e.Instr0("ret")
	e.curFunc = nil
}

// emitVarargsSaveArea writes the register-parameter dump backing
// __builtin_va_start: an 8-byte gp_offset word followed by the six
// integer argument registers, all relative to fn.VaArea's frame slot.
func (e *Emitter) emitVarargsSaveArea(fn *ast.Function) {
	base := fn.VaArea.Offset
	gpOffset := len(fn.Params) * 8
	if gpOffset > 48 {
		gpOffset = 48
	}
	e.Instr2("mov", "dword ptr "+slotAt(base, 0), gpOffset)
	for i, reg := range argReg8 {
		e.Instr2("mov", slotAt(base, 8+i*8), reg)
	}
}

// slot renders a local's frame address.
func slot(offset int) string {
	return fmt.Sprintf("[rbp-%d]", offset)
}

// slotAt renders the address `k` bytes into the aggregate whose frame
// slot ends at `base` (i.e. starts at rbp-base).
func slotAt(base, k int) string {
	return fmt.Sprintf("[rbp-%d]", base-k)
}
