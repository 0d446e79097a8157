// Command zxcc compiles a single C translation unit to Intel-syntax
// x86-64 assembly on stdout.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/asps1917/zxcc/internal/codegen"
	"github.com/asps1917/zxcc/internal/lexer"
	"github.com/asps1917/zxcc/internal/parser"
	"github.com/asps1917/zxcc/internal/source"
)

func main() {
	output := flag.String("o", "", "output file (default: stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: zxcc [-o output] input.c\n")
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0), *output))
}

func run(inputPath, outputPath string) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(*source.Error); ok {
				fmt.Fprint(os.Stderr, err.Error())
				exitCode = 1
				return
			}
			panic(r)
		}
	}()

	f, err := source.Load(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zxcc: %v\n", err)
		return 1
	}

	out := os.Stdout
	if outputPath != "" {
		w, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "zxcc: %v\n", err)
			return 1
		}
		defer w.Close()
		out = w
	}

	toks := lexer.Tokenize(f)
	prog := parser.Parse(toks)
	if err := codegen.Generate(out, prog); err != nil {
		fmt.Fprintf(os.Stderr, "zxcc: %v\n", err)
		return 1
	}
	return 0
}
