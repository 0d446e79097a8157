// Package source holds the loaded translation unit and formats the
// compiler's single diagnostic shape: file:line, the offending source
// line, and a caret under the exact byte that triggered the message.
package source

import (
	"bytes"
	"fmt"
	"os"
)

// File is the in-memory image of one translation unit. The compiler is
// single-shot: the driver loads exactly one of these per run.
type File struct {
	Name string
	Text []byte
}

// Load reads path into memory and appends a trailing newline if the file
// doesn't already end with one, so line-scanning never walks off the end.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return &File{Name: path, Text: data}, nil
}

// Error is a positioned diagnostic. It is the value recovered by the
// driver's top-level panic/recover pair.
type Error struct {
	File *File
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	if e.File == nil {
		return e.Msg
	}
	return e.File.render(e.Pos, e.Msg)
}

// render produces the canonical
//
//	FILE:LINE: source-line
//	  ^ message
//
// block for a byte offset into the file.
func (f *File) render(pos int, msg string) string {
	if pos < 0 {
		pos = 0
	}
	if pos > len(f.Text) {
		pos = len(f.Text)
	}
	lineStart := pos
	for lineStart > 0 && f.Text[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := pos
	for lineEnd < len(f.Text) && f.Text[lineEnd] != '\n' {
		lineEnd++
	}
	lineNum := 1 + bytes.Count(f.Text[:lineStart], []byte{'\n'})

	var b bytes.Buffer
	prefix := fmt.Sprintf("%s:%d: ", f.Name, lineNum)
	fmt.Fprintf(&b, "%s%s\n", prefix, f.Text[lineStart:lineEnd])
	for i := 0; i < len(prefix)+(pos-lineStart); i++ {
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "^ %s\n", msg)
	return b.String()
}

// Fatal raises a positioned diagnostic. The compiler has no error
// recovery, so this unwinds the whole compilation via panic; the driver
// is the only place that recovers it.
func (f *File) Fatal(pos int, format string, args ...interface{}) {
	panic(&Error{File: f, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Warn prints a non-fatal diagnostic in the same shape as Fatal and
// returns control to the caller.
func (f *File) Warn(pos int, format string, args ...interface{}) {
	fmt.Fprint(os.Stderr, f.render(pos, fmt.Sprintf(format, args...)))
}

// Bug raises an internal-assertion failure: a violated compiler
// invariant rather than an ill-formed program.
func Bug(format string, args ...interface{}) {
	panic(&Error{Msg: "internal error: " + fmt.Sprintf(format, args...)})
}
