package lexer

import (
	"strings"
	"testing"

	"minilang/internal/token"
)

func tokenize(t *testing.T, source string) []token.Token {
	t.Helper()
	l := New(source, "test.mini")
	tokens, diags := l.Tokenize()
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return tokens
}

func expectKinds(t *testing.T, tokens []token.Token, expected []token.Kind) {
	t.Helper()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeSimple(t *testing.T) {
	tokens := tokenize(t, `x = 1 + 2`)
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN,
		token.INT, token.PLUS, token.INT, token.EOF,
	})
}

func TestTokenizeKeywords(t *testing.T) {
	source := `if elif else while for in func return break continue and or not true false`
	tokens := tokenize(t, source)
	expectKinds(t, tokens, []token.Kind{
		token.KW_IF, token.KW_ELIF, token.KW_ELSE, token.KW_WHILE,
		token.KW_FOR, token.KW_IN, token.KW_FUNC, token.KW_RETURN,
		token.KW_BREAK, token.KW_CONTINUE, token.KW_AND, token.KW_OR,
		token.KW_NOT, token.KW_TRUE, token.KW_FALSE,
		token.EOF,
	})
}

func TestTokenizeOperators(t *testing.T) {
	tokens := tokenize(t, `= == != < <= > >= + - * / %`)
	expectKinds(t, tokens, []token.Kind{
		token.ASSIGN, token.EQ, token.NEQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EOF,
	})
}

func TestTokenizeDelimiters(t *testing.T) {
	tokens := tokenize(t, `( ) [ ] { } : ,`)
	expectKinds(t, tokens, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET,
		token.LBRACE, token.RBRACE, token.COLON, token.COMMA,
		token.EOF,
	})
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := tokenize(t, `42 3.14 0 0.5`)
	expectKinds(t, tokens, []token.Kind{
		token.INT, token.FLOAT, token.INT, token.FLOAT, token.EOF,
	})
	if tokens[0].Lexeme != "42" {
		t.Errorf("expected lexeme 42, got %q", tokens[0].Lexeme)
	}
	if tokens[1].Lexeme != "3.14" {
		t.Errorf("expected lexeme 3.14, got %q", tokens[1].Lexeme)
	}
}

func TestTokenizeString(t *testing.T) {
	tokens := tokenize(t, `"hello world"`)
	expectKinds(t, tokens, []token.Kind{token.STRING, token.EOF})
	if tokens[0].Lexeme != "hello world" {
		t.Errorf("expected unquoted lexeme, got %q", tokens[0].Lexeme)
	}
}

func TestStringEscapes(t *testing.T) {
	tokens := tokenize(t, `"a\nb\t\"c\"\\"`)
	if tokens[0].Lexeme != "a\nb\t\"c\"\\" {
		t.Errorf("escape handling wrong, got %q", tokens[0].Lexeme)
	}
}

func TestNewlineTokens(t *testing.T) {
	tokens := tokenize(t, "x = 1\ny = 2\n")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestComments(t *testing.T) {
	tokens := tokenize(t, "x = 1 # the answer\n# full line\ny = 2")
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT,
		token.EOF,
	})
}

func TestSpans(t *testing.T) {
	tokens := tokenize(t, "x = 10\ny = 2")
	// 'y' starts the second line at column 1
	y := tokens[4]
	if y.Kind != token.IDENT || y.Lexeme != "y" {
		t.Fatalf("expected ident y, got %s %q", y.Kind, y.Lexeme)
	}
	if y.Span.Start.Line != 2 || y.Span.Start.Column != 1 {
		t.Errorf("expected span 2:1, got %d:%d", y.Span.Start.Line, y.Span.Start.Column)
	}
	// '10' spans columns 5..7 on line 1
	ten := tokens[2]
	if ten.Span.Start.Column != 5 || ten.Span.End.Column != 7 {
		t.Errorf("expected 10 at columns 5..7, got %d..%d", ten.Span.Start.Column, ten.Span.End.Column)
	}
}

func TestNonASCIIIdentifiers(t *testing.T) {
	tokens := tokenize(t, `variável = 1`)
	expectKinds(t, tokens, []token.Kind{
		token.IDENT, token.ASSIGN, token.INT, token.EOF,
	})
	if tokens[0].Lexeme != "variável" {
		t.Errorf("expected lexeme variável, got %q", tokens[0].Lexeme)
	}
}

// ---- error cases ----

func expectLexError(t *testing.T, source, code, contains string) {
	t.Helper()
	l := New(source, "test.mini")
	tokens, diags := l.Tokenize()
	if len(diags) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Code != code {
		t.Errorf("expected code %s, got %s", code, d.Code)
	}
	if !strings.Contains(d.Message, contains) {
		t.Errorf("expected message containing %q, got %q", contains, d.Message)
	}
	// Fail-fast: the stream still ends with EOF
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		t.Errorf("token stream should end with EOF, got %v", tokens)
	}
}

func TestUnterminatedString(t *testing.T) {
	expectLexError(t, `"abc`, "E1001", "unterminated string")
	expectLexError(t, "\"abc\nx = 1", "E1001", "unterminated string")
}

func TestUnknownEscape(t *testing.T) {
	expectLexError(t, `"a\qb"`, "E1002", "escape")
}

func TestUnexpectedCharacter(t *testing.T) {
	expectLexError(t, `x = 1 ? 2`, "E1003", "unexpected character")
}

func TestBangHint(t *testing.T) {
	l := New(`x = !y`, "test.mini")
	_, diags := l.Tokenize()
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Hint, "not") {
		t.Errorf("expected hint mentioning 'not', got %q", diags[0].Hint)
	}
}

func TestFailFastStopsAtFirstError(t *testing.T) {
	l := New("x = ?\ny = ?", "test.mini")
	_, diags := l.Tokenize()
	if len(diags) != 1 {
		t.Errorf("expected a single diagnostic, got %d: %v", len(diags), diags)
	}
}
