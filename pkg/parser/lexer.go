package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/gobuilder/pkg/types"
)

const eof = -1

// Lexer converts builder source text into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered

	escapes   bool // decode backslash escapes in strings
	fractions bool // scan digits.digits as one number
}

// LexerOption configures a Lexer.
type LexerOption func(*Lexer)

// LexStringEscapes makes string literals decode \", \\, \n and \t. Without
// it a string ends at the next quote and backslashes are plain text.
func LexStringEscapes() LexerOption {
	return func(l *Lexer) {
		l.escapes = true
	}
}

// LexFractions makes "1.5" a single number. Without it a number is an
// optional leading dot followed by digits, so "1.5" is the numbers 1 and .5.
func LexFractions() LexerOption {
	return func(l *Lexer) {
		l.fractions = true
	}
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string, opts ...LexerOption) *Lexer {
	l := &Lexer{
		input:  input,
		length: len(input),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize scans the whole input. Scanning stops at the first lexical
// error, which is returned as a *types.Error; no tokens are returned then.
func Tokenize(input string, opts ...LexerOption) ([]Token, error) {
	l := NewLexer(input, opts...)
	var tokens []Token
	for {
		t := l.Next()
		switch t.Type {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return nil, l.Error()
		}
		tokens = append(tokens, t)
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. A scanning failure yields TokenError and is reported by
// the Error method.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// "->" is checked before the single-character symbols and '-'
	if ch == '-' {
		if l.acceptRune('>') {
			return l.newToken(TokenArrow)
		}
		return l.newToken(TokenMinus)
	}

	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	// Number literals: 42, .5, and 3.14 under LexFractions
	if isDigit(ch) || (ch == '.' && isDigit(l.peek())) {
		l.backup()
		return l.scanNumber()
	}

	if ch == '.' {
		return l.newToken(TokenDot)
	}

	if ch == '"' {
		return l.scanString()
	}

	if isIdentStart(ch) {
		return l.scanIdentifier()
	}

	return l.error(types.ErrUnknownCharacter, fmt.Sprintf("Unknown character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanNumber reads a number literal from the current position.
// Format: \.?[0-9]+, or [0-9]*(\.[0-9]+)? with LexFractions.
func (l *Lexer) scanNumber() Token {
	if l.acceptRune('.') {
		l.acceptAll(isDigit)
	} else {
		l.acceptAll(isDigit)
		// A dot only joins the number when a digit follows it;
		// otherwise it is left for the DOT rule.
		if l.fractions && l.peek() == '.' && isDigit(l.peekAt(1)) {
			l.acceptRune('.')
			l.acceptAll(isDigit)
		}
	}

	t := l.newToken(TokenNumber)
	// Only out-of-range literals can fail here; ParseFloat then yields ±Inf.
	t.Number, _ = strconv.ParseFloat(t.Value, 64)
	return t
}

// scanString reads a string literal. The opening quote has already been
// consumed. The token spans both quotes; its Value is the content, with
// escapes decoded under LexStringEscapes.
func (l *Lexer) scanString() Token {
	var b strings.Builder

Loop:
	for {
		switch ch := l.nextRune(); ch {
		case '"':
			break Loop
		case '\\':
			if !l.escapes {
				b.WriteRune(ch)
				continue
			}
			r := l.nextRune()
			if r == eof {
				return l.error(types.ErrStringNotClosed, "Unterminated string literal")
			}
			b.WriteString(unescape(r))
		case eof:
			return l.error(types.ErrStringNotClosed, "Unterminated string literal")
		default:
			b.WriteRune(ch)
		}
	}

	t := l.newToken(TokenString)
	t.Value = b.String()
	return t
}

// scanIdentifier reads an identifier. The first rune has already been consumed.
func (l *Lexer) scanIdentifier() Token {
	l.acceptAll(isIdentPart)
	return l.newToken(TokenIdentifier)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:  TokenEOF,
		Start: l.current,
		End:   l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = types.NewError(code, message, t.Start, t.End).WithToken(t.Value)
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:  tt,
		Value: l.input[l.start:l.current],
		Start: l.start,
		End:   l.current,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

// peek returns the next rune without consuming it.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n bytes past the current position.
// Only used for ASCII lookahead.
func (l *Lexer) peekAt(n int) rune {
	pos := l.current + n
	if pos >= l.length {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// skipWhitespace skips blanks and "//" line comments.
func (l *Lexer) skipWhitespace() {
	for {
		l.acceptAll(isWhitespace)
		l.ignore()

		if !strings.HasPrefix(l.input[l.current:], "//") {
			return
		}
		for ch := l.nextRune(); ch != eof && ch != '\n'; ch = l.nextRune() {
		}
		l.ignore()
	}
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\n', '\t', '\r':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func unescape(r rune) string {
	switch r {
	case '"':
		return `"`
	case '\\':
		return `\`
	case 'n':
		return "\n"
	case 't':
		return "\t"
	default:
		return `\` + string(r)
	}
}
