package parser_test

import (
	"errors"
	"testing"

	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/types"
)

type lexerTestCase struct {
	name     string
	input    string
	opts     []parser.LexerOption
	expected []parser.Token
}

func runLexerTests(t *testing.T, tests []lexerTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := parser.Tokenize(tt.input, tt.opts...)
			if err != nil {
				t.Fatalf("Tokenize(%q) failed: %v", tt.input, err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, want := range tt.expected {
				got := tokens[i]
				if got.Type != want.Type || got.Value != want.Value || got.Start != want.Start || got.End != want.End {
					t.Errorf("token %d: expected %+v, got %+v", i, want, got)
				}
				if want.Type == parser.TokenNumber && got.Number != want.Number {
					t.Errorf("token %d: expected number %v, got %v", i, want.Number, got.Number)
				}
			}
		})
	}
}

func TestLexerWhitespaceAndComments(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "leading whitespace",
			input: "   abc",
			expected: []parser.Token{
				{Type: parser.TokenIdentifier, Value: "abc", Start: 3, End: 6},
			},
		},
		{
			name:  "newlines tabs and carriage returns",
			input: "\n\t\r\nabc",
			expected: []parser.Token{
				{Type: parser.TokenIdentifier, Value: "abc", Start: 4, End: 7},
			},
		},
		{
			name:  "line comment",
			input: "a // comment ( } \"\nb",
			expected: []parser.Token{
				{Type: parser.TokenIdentifier, Value: "a", Start: 0, End: 1},
				{Type: parser.TokenIdentifier, Value: "b", Start: 19, End: 20},
			},
		},
		{
			name:     "comment at end of input",
			input:    "// only a comment",
			expected: nil,
		},
	})
}

func TestLexerPunctuation(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "single characters",
			input: "(){},:+=;.",
			expected: []parser.Token{
				{Type: parser.TokenParenOpen, Value: "(", Start: 0, End: 1},
				{Type: parser.TokenParenClose, Value: ")", Start: 1, End: 2},
				{Type: parser.TokenBraceOpen, Value: "{", Start: 2, End: 3},
				{Type: parser.TokenBraceClose, Value: "}", Start: 3, End: 4},
				{Type: parser.TokenComma, Value: ",", Start: 4, End: 5},
				{Type: parser.TokenColon, Value: ":", Start: 5, End: 6},
				{Type: parser.TokenPlus, Value: "+", Start: 6, End: 7},
				{Type: parser.TokenEquals, Value: "=", Start: 7, End: 8},
				{Type: parser.TokenSemicolon, Value: ";", Start: 8, End: 9},
				{Type: parser.TokenDot, Value: ".", Start: 9, End: 10},
			},
		},
		{
			name:  "arrow spans both characters",
			input: "a->b",
			expected: []parser.Token{
				{Type: parser.TokenIdentifier, Value: "a", Start: 0, End: 1},
				{Type: parser.TokenArrow, Value: "->", Start: 1, End: 3},
				{Type: parser.TokenIdentifier, Value: "b", Start: 3, End: 4},
			},
		},
		{
			name:  "minus alone",
			input: "- 1",
			expected: []parser.Token{
				{Type: parser.TokenMinus, Value: "-", Start: 0, End: 1},
				{Type: parser.TokenNumber, Value: "1", Number: 1, Start: 2, End: 3},
			},
		},
	})
}

func TestLexerMinusThenGreater(t *testing.T) {
	// ">" on its own is not a token
	_, err := parser.Tokenize("- >")
	var perr *types.Error
	if !errors.As(err, &perr) || perr.Code != types.ErrUnknownCharacter {
		t.Fatalf("Expected unknown character error, got %v", err)
	}
	if perr.Start != 2 || perr.End != 3 {
		t.Errorf("Expected span [2,3), got [%d,%d)", perr.Start, perr.End)
	}
}

func TestLexerNumbers(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "integer",
			input: "42",
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: "42", Number: 42, Start: 0, End: 2},
			},
		},
		{
			name:  "leading dot",
			input: ".5",
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: ".5", Number: 0.5, Start: 0, End: 2},
			},
		},
		{
			name:  "digits dot digits is two numbers",
			input: "1.5",
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: "1", Number: 1, Start: 0, End: 1},
				{Type: parser.TokenNumber, Value: ".5", Number: 0.5, Start: 1, End: 3},
			},
		},
		{
			name:  "chained dots",
			input: "1.2.3",
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: "1", Number: 1, Start: 0, End: 1},
				{Type: parser.TokenNumber, Value: ".2", Number: 0.2, Start: 1, End: 3},
				{Type: parser.TokenNumber, Value: ".3", Number: 0.3, Start: 3, End: 5},
			},
		},
		{
			name:  "fraction with LexFractions",
			input: "3.14",
			opts:  []parser.LexerOption{parser.LexFractions()},
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: "3.14", Number: 3.14, Start: 0, End: 4},
			},
		},
		{
			name:  "leading dot with LexFractions",
			input: ".5.5",
			opts:  []parser.LexerOption{parser.LexFractions()},
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: ".5", Number: 0.5, Start: 0, End: 2},
				{Type: parser.TokenNumber, Value: ".5", Number: 0.5, Start: 2, End: 4},
			},
		},
		{
			name:  "trailing dot is a separate token",
			input: "1.a",
			expected: []parser.Token{
				{Type: parser.TokenNumber, Value: "1", Number: 1, Start: 0, End: 1},
				{Type: parser.TokenDot, Value: ".", Start: 1, End: 2},
				{Type: parser.TokenIdentifier, Value: "a", Start: 2, End: 3},
			},
		},
		{
			name:  "dot between identifiers",
			input: "Type.Member",
			expected: []parser.Token{
				{Type: parser.TokenIdentifier, Value: "Type", Start: 0, End: 4},
				{Type: parser.TokenDot, Value: ".", Start: 4, End: 5},
				{Type: parser.TokenIdentifier, Value: "Member", Start: 5, End: 11},
			},
		},
	})
}

func TestLexerStrings(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "simple string spans the quotes",
			input: `"hello"`,
			expected: []parser.Token{
				{Type: parser.TokenString, Value: "hello", Start: 0, End: 7},
			},
		},
		{
			name:  "empty string",
			input: `""`,
			expected: []parser.Token{
				{Type: parser.TokenString, Value: "", Start: 0, End: 2},
			},
		},
		{
			name:  "backslash before closing quote",
			input: `"C:\" "x"`,
			expected: []parser.Token{
				{Type: parser.TokenString, Value: `C:\`, Start: 0, End: 5},
				{Type: parser.TokenString, Value: "x", Start: 6, End: 9},
			},
		},
		{
			name:  "backslash sequences kept raw",
			input: `"a\nb"`,
			expected: []parser.Token{
				{Type: parser.TokenString, Value: `a\nb`, Start: 0, End: 6},
			},
		},
		{
			name:  "escapes decoded with LexStringEscapes",
			input: `"a\"b\\c\nd"`,
			opts:  []parser.LexerOption{parser.LexStringEscapes()},
			expected: []parser.Token{
				{Type: parser.TokenString, Value: "a\"b\\c\nd", Start: 0, End: 12},
			},
		},
		{
			name:  "unknown escape kept verbatim with LexStringEscapes",
			input: `"\q"`,
			opts:  []parser.LexerOption{parser.LexStringEscapes()},
			expected: []parser.Token{
				{Type: parser.TokenString, Value: `\q`, Start: 0, End: 4},
			},
		},
		{
			name:  "comment marker inside string",
			input: `"http://example.com"`,
			expected: []parser.Token{
				{Type: parser.TokenString, Value: "http://example.com", Start: 0, End: 20},
			},
		},
	})
}

func TestLexerIdentifiers(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "letters digits underscores",
			input: "_call1 $x",
			expected: []parser.Token{
				{Type: parser.TokenIdentifier, Value: "_call1", Start: 0, End: 6},
				{Type: parser.TokenIdentifier, Value: "$x", Start: 7, End: 9},
			},
		},
		{
			name:  "unicode letters use byte offsets",
			input: "größe x",
			expected: []parser.Token{
				{Type: parser.TokenIdentifier, Value: "größe", Start: 0, End: 7},
				{Type: parser.TokenIdentifier, Value: "x", Start: 8, End: 9},
			},
		},
	})
}

func TestLexerErrors(t *testing.T) {
	escapes := []parser.LexerOption{parser.LexStringEscapes()}
	tests := []struct {
		name  string
		input string
		opts  []parser.LexerOption
		code  types.ErrorCode
		start int
		end   int
	}{
		{"unterminated string", `a "oops`, nil, types.ErrStringNotClosed, 2, 7},
		{"quote after backslash closes", `"a\" b"`, nil, types.ErrStringNotClosed, 6, 7},
		{"unterminated after escape", `"a\`, escapes, types.ErrStringNotClosed, 0, 3},
		{"escaped quote does not close", `"a\"`, escapes, types.ErrStringNotClosed, 0, 4},
		{"unknown character", "a # b", nil, types.ErrUnknownCharacter, 2, 3},
		{"single slash", "a / b", nil, types.ErrUnknownCharacter, 2, 3},
		{"multibyte unknown character", "a € b", nil, types.ErrUnknownCharacter, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := parser.Tokenize(tt.input, tt.opts...)
			if err == nil {
				t.Fatalf("Expected error, got tokens %v", tokens)
			}
			if tokens != nil {
				t.Errorf("Expected no tokens on error, got %v", tokens)
			}
			var perr *types.Error
			if !errors.As(err, &perr) {
				t.Fatalf("Expected *types.Error, got %T", err)
			}
			if perr.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, perr.Code)
			}
			if perr.Start != tt.start || perr.End != tt.end {
				t.Errorf("Expected span [%d,%d), got [%d,%d)", tt.start, tt.end, perr.Start, perr.End)
			}
			if !types.IsLexical(err) || types.IsSyntax(err) {
				t.Errorf("Expected a lexical error, got %v", err)
			}
		})
	}
}

func TestLexerNextAfterEOF(t *testing.T) {
	l := parser.NewLexer("a")
	if tok := l.Next(); tok.Type != parser.TokenIdentifier {
		t.Fatalf("Expected identifier, got %v", tok)
	}
	for i := 0; i < 3; i++ {
		if tok := l.Next(); tok.Type != parser.TokenEOF {
			t.Fatalf("Expected EOF, got %v", tok)
		}
	}
	if l.Error() != nil {
		t.Errorf("Expected no error, got %v", l.Error())
	}
}

const sampleSource = `// markup sample
external fun html(func: Unit.() -> Unit)
external fun Unit.a(link: String, func: Unit.() -> Unit)
operator fun String.unaryPlus(): Unit {}

fun page(title: String) {
    html {
        body {
            target = Target.blank
            a("https://example.com") { +"link" }
            +"Size: " - .5
        }
    }
}
`

// checkTiling verifies that token spans are strictly increasing, do not
// overlap, and that everything between them scans to nothing.
func checkTiling(t *testing.T, input string, tokens []parser.Token) {
	t.Helper()
	prev := 0
	for i, tok := range tokens {
		if tok.Start < prev || tok.End <= tok.Start {
			t.Fatalf("token %d has bad span [%d,%d) after %d", i, tok.Start, tok.End, prev)
		}
		gap := input[prev:tok.Start]
		if rest, err := parser.Tokenize(gap); err != nil || len(rest) != 0 {
			t.Fatalf("gap %q before token %d is not blank: %v %v", gap, i, rest, err)
		}
		prev = tok.End
	}
	if rest, err := parser.Tokenize(input[prev:]); err != nil || len(rest) != 0 {
		t.Fatalf("trailing text %q is not blank", input[prev:])
	}
}

// checkRelex verifies that every token re-scans to itself.
func checkRelex(t *testing.T, input string, tokens []parser.Token) {
	t.Helper()
	for i, tok := range tokens {
		text := input[tok.Start:tok.End]
		again, err := parser.Tokenize(text)
		if err != nil {
			t.Fatalf("token %d %q failed to re-scan: %v", i, text, err)
		}
		if len(again) != 1 {
			t.Fatalf("token %d %q re-scanned to %d tokens", i, text, len(again))
		}
		if again[0].Type != tok.Type || again[0].Value != tok.Value || again[0].Number != tok.Number {
			t.Errorf("token %d %q re-scanned to %+v, want %+v", i, text, again[0], tok)
		}
	}
}

func TestLexerSpansTileInput(t *testing.T) {
	tokens, err := parser.Tokenize(sampleSource)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	checkTiling(t, sampleSource, tokens)
}

func TestLexerRelexIsIdempotent(t *testing.T) {
	tokens, err := parser.Tokenize(sampleSource)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	checkRelex(t, sampleSource, tokens)
}

func TestLexerDeterministic(t *testing.T) {
	first, _ := parser.Tokenize(sampleSource)
	second, _ := parser.Tokenize(sampleSource)
	if len(first) != len(second) {
		t.Fatalf("token counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestTokenTypeString(t *testing.T) {
	tests := map[parser.TokenType]string{
		parser.TokenArrow:      "->",
		parser.TokenIdentifier: "(identifier)",
		parser.TokenEOF:        "(eof)",
		parser.TokenType(200):  "(unknown)",
	}
	for tt, want := range tests {
		if got := tt.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", tt, got, want)
		}
	}
}

func FuzzTokenize(f *testing.F) {
	seeds := []string{
		sampleSource,
		`fun a(x: Int) { call1("hi") { +"nested" } }`,
		`.5 1.2.3 a.b -> - "x\"y"`,
		"// c\n",
		`"open`,
		"#",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		tokens, err := parser.Tokenize(input)
		if err != nil {
			if !types.IsLexical(err) {
				t.Fatalf("non-lexical error from Tokenize: %v", err)
			}
			return
		}
		checkTiling(t, input, tokens)
		checkRelex(t, input, tokens)
	})
}
