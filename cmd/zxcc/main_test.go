// Integration tests that build the zxcc binary and run it end to end,
// following the same build-once-in-TestMain / exec-and-inspect shape
// the other compiler-pipeline stages use.
package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var zxccBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "zxcc-test-")
	if err != nil {
		panic("MkdirTemp: " + err.Error())
	}
	defer os.RemoveAll(tmp)

	zxccBin = filepath.Join(tmp, "zxcc")
	cmd := exec.Command("go", "build", "-o", zxccBin, ".")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build zxcc: " + err.Error())
	}

	os.Exit(m.Run())
}

// compile writes src to a temp .c file and runs zxcc on it, returning
// stdout, stderr, and whether the process exited zero.
func compile(t *testing.T, src string) (stdout, stderr string, ok bool) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cmd := exec.Command(zxccBin, path)
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err == nil
}

func TestCompileReturningConstantExitsZeroAndEmitsAsm(t *testing.T) {
	asm, stderr, ok := compile(t, "int main(void) { return 0; }")
	require.True(t, ok, "stderr: %s", stderr)
	require.Contains(t, asm, ".intel_syntax noprefix")
	require.Contains(t, asm, "main:")
}

func TestCompileUndeclaredIdentifierFails(t *testing.T) {
	_, stderr, ok := compile(t, "int main(void) { return undeclared_thing; }")
	require.False(t, ok)
	require.NotEmpty(t, stderr)
}

func TestCompileArithmeticAndControlFlow(t *testing.T) {
	asm, stderr, ok := compile(t, `
		int fib(int n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		int main(void) {
			return fib(10);
		}
	`)
	require.True(t, ok, "stderr: %s", stderr)
	require.Contains(t, asm, "fib:")
	require.Contains(t, asm, "call fib")
}

func TestCompileMissingFileFails(t *testing.T) {
	cmd := exec.Command(zxccBin, "/nonexistent/path.c")
	var errBuf strings.Builder
	cmd.Stderr = &errBuf
	err := cmd.Run()
	require.Error(t, err)
}

func TestCompileWritesToDashOOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.c")
	out := filepath.Join(dir, "out.s")
	require.NoError(t, os.WriteFile(src, []byte("int main(void) { return 1; }"), 0o644))

	cmd := exec.Command(zxccBin, "-o", out, src)
	var errBuf strings.Builder
	cmd.Stderr = &errBuf
	require.NoError(t, cmd.Run(), "stderr: %s", errBuf.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), ".intel_syntax noprefix")
}
