// Command minilang is the CLI entry point for the minilang toolchain.
//
// Usage:
//
//	minilang run <file>              Run a source file
//	minilang tokens <file>           Print tokens
//	minilang tokens <file> --json    Print tokens as JSON
//	minilang parse <file>            Print AST as JSON
//	minilang repl                    Start interactive REPL
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"minilang/internal/ast"
	"minilang/internal/lexer"
	"minilang/internal/parser"
	"minilang/internal/runtime"
)

var cli struct {
	Run    runCmd    `cmd:"" help:"Run a source file."`
	Tokens tokensCmd `cmd:"" help:"Tokenize a source file and print the token stream."`
	Parse  parseCmd  `cmd:"" help:"Parse a source file and print the AST as JSON."`
	Repl   replCmd   `cmd:"" default:"1" help:"Start an interactive session."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("minilang"),
		kong.Description("A small tree-walking interpreter."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

// ---- run command ----

type runCmd struct {
	File string `arg:"" type:"existingfile" help:"Source file to run."`
}

func (c *runCmd) Run() error {
	source := readFile(c.File)

	l := lexer.New(source, c.File)
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		printDiagsText(lexDiags)
		os.Exit(1)
	}

	p := parser.New(tokens)
	file, parseDiags := p.ParseFile()
	if len(parseDiags) > 0 {
		printDiagsText(parseDiags)
		os.Exit(1)
	}

	interp := runtime.NewInterpreter(os.Stdout)
	if err := interp.Run(file); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	return nil
}

// ---- tokens command ----

type tokensCmd struct {
	File string `arg:"" type:"existingfile" help:"Source file to tokenize."`
	JSON bool   `help:"Emit tokens and diagnostics as JSON."`
}

func (c *tokensCmd) Run() error {
	source := readFile(c.File)

	l := lexer.New(source, c.File)
	tokens, diags := l.Tokenize()

	if c.JSON {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
	return nil
}

// ---- parse command ----

type parseCmd struct {
	File string `arg:"" type:"existingfile" help:"Source file to parse."`
}

func (c *parseCmd) Run() error {
	source := readFile(c.File)

	l := lexer.New(source, c.File)
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		printJSON(map[string]interface{}{"diagnostics": diagsToSlice(lexDiags)})
		os.Exit(1)
	}

	p := parser.New(tokens)
	file, parseDiags := p.ParseFile()
	if len(parseDiags) > 0 {
		printJSON(map[string]interface{}{"diagnostics": diagsToSlice(parseDiags)})
		os.Exit(1)
	}

	printJSON(ast.NodeToMap(file))
	return nil
}

// ---- repl command ----

type replCmd struct{}

func (c *replCmd) Run() error {
	return runRepl()
}
