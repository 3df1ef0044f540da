package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"minilang/internal/diag"
	"minilang/internal/lexer"
	"minilang/internal/parser"
	"minilang/internal/runtime"
)

// ---- styles ----

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	contStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// ---- repl command ----

func runRepl() error {
	// History file path (~/.minilang_history)
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".minilang_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptStyle.Render("mini>") + " ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("readline init failed: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		bannerStyle.Render("minilang REPL"),
		mutedStyle.Render("(type 'exit' or Ctrl+D to quit)"))

	interp := runtime.NewInterpreter(rl.Stdout())
	var accumulated strings.Builder
	braceDepth := 0

	for {
		if braceDepth > 0 {
			rl.SetPrompt(contStyle.Render(".... ") + " ")
		} else {
			rl.SetPrompt(promptStyle.Render("mini>") + " ")
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					// Cancel multi-line input
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s\n", mutedStyle.Render("(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		// Track open braces and brackets for multi-line input
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()

		if strings.TrimSpace(source) == "" {
			continue
		}

		l := lexer.New(source, "<repl>")
		tokens, lexDiags := l.Tokenize()
		if len(lexDiags) > 0 {
			printDiagsStyled(rl.Stderr(), lexDiags)
			continue
		}

		p := parser.New(tokens)
		file, parseDiags := p.ParseFile()
		if len(parseDiags) > 0 {
			printDiagsStyled(rl.Stderr(), parseDiags)
			continue
		}

		val, err := interp.RunInteractive(file)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), errorStyle.Render("error: "+err.Error()))
			continue
		}
		// Echo the value of a bare expression, except unit
		if val != nil {
			if _, isUnit := val.(runtime.UnitVal); !isUnit {
				fmt.Fprintln(rl.Stdout(), valueStyle.Render(val.String()))
			}
		}
	}
	return nil
}

// printDiagsStyled prints diagnostics in red for REPL display.
func printDiagsStyled(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, errorStyle.Render(d.String()))
		if d.Hint != "" {
			fmt.Fprintln(w, mutedStyle.Render("  hint: "+d.Hint))
		}
	}
}
