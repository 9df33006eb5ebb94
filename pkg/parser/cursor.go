package parser

import (
	"fmt"

	"github.com/sandrolain/gobuilder/pkg/types"
)

// Cursor is a position over an immutable token sequence.
//
// It only moves forward, except when Try rolls it back to a snapshot after
// a failed attempt. A Cursor belongs to a single parse and must not be
// shared.
type Cursor struct {
	tokens []Token
	pos    int
	end    int // byte length of the source, used for the EOF token span
}

// NewCursor creates a cursor at the first token. sourceLen is the byte
// length of the text the tokens were scanned from.
func NewCursor(tokens []Token, sourceLen int) *Cursor {
	return &Cursor{
		tokens: tokens,
		end:    sourceLen,
	}
}

// Pos returns the index of the current token.
func (c *Cursor) Pos() int {
	return c.pos
}

// Done reports whether every token has been consumed.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.tokens)
}

// Current returns the token at the cursor position, or an EOF token once
// the sequence is exhausted.
func (c *Cursor) Current() Token {
	if c.pos >= len(c.tokens) {
		return Token{Type: TokenEOF, Start: c.end, End: c.end}
	}
	return c.tokens[c.pos]
}

// PeekNext returns the token after the current one.
// ok is false when there is none.
func (c *Cursor) PeekNext() (t Token, ok bool) {
	return c.PeekAt(1)
}

// PeekAt returns the token n positions after the current one.
func (c *Cursor) PeekAt(n int) (t Token, ok bool) {
	i := c.pos + n
	if i < 0 || i >= len(c.tokens) {
		return Token{}, false
	}
	return c.tokens[i], true
}

// LastEnd returns the end offset of the most recently consumed token.
func (c *Cursor) LastEnd() int {
	if c.pos == 0 {
		return 0
	}
	return c.tokens[c.pos-1].End
}

// NextIs reports whether the token after the current one has type tt.
func (c *Cursor) NextIs(tt TokenType) bool {
	next, ok := c.PeekNext()
	return ok && next.Type == tt
}

// Advance consumes the current token.
func (c *Cursor) Advance() {
	if c.pos < len(c.tokens) {
		c.pos++
	}
}

// Expect consumes the current token if it has type tt.
func (c *Cursor) Expect(tt TokenType) error {
	cur := c.Current()
	if cur.Type != tt {
		return c.errorf(types.ErrExpectedToken, "Expected '%s', but found %s", tt, cur)
	}
	c.pos++
	return nil
}

// ExpectIdentifier consumes an identifier and returns its text.
func (c *Cursor) ExpectIdentifier() (string, error) {
	cur := c.Current()
	if cur.Type != TokenIdentifier {
		return "", c.errorf(types.ErrExpectedIdentifier, "Expected identifier, but found %s", cur)
	}
	c.pos++
	return cur.Value, nil
}

// ExpectKeyword consumes the identifier keyword.
func (c *Cursor) ExpectKeyword(keyword string) error {
	cur := c.Current()
	if cur.Type != TokenIdentifier {
		return c.errorf(types.ErrExpectedIdentifier, "Expected keyword '%s', but found %s", keyword, cur)
	}
	if cur.Value != keyword {
		return c.errorf(types.ErrExpectedKeyword, "Expected keyword '%s', but found '%s'", keyword, cur.Value)
	}
	c.pos++
	return nil
}

// errorf creates a syntax error spanning the current token. Failures at
// the end of the token sequence are reported as unexpected end of input.
func (c *Cursor) errorf(code types.ErrorCode, format string, args ...any) *types.Error {
	cur := c.Current()
	if cur.Type == TokenEOF {
		code = types.ErrUnexpectedEnd
	}
	return types.NewError(code, fmt.Sprintf(format, args...), cur.Start, cur.End)
}

// Try runs rule as a backtracking attempt. On success it returns the
// rule's result; on a syntax error the cursor is restored to where it was
// and ok is false. The error itself is discarded.
//
// Rules only ever fail with syntax errors: lexical errors are reported
// before parsing starts.
func Try[T any](c *Cursor, rule func() (T, error)) (result T, ok bool) {
	start := c.pos
	result, err := rule()
	if err != nil {
		c.pos = start
		var zero T
		return zero, false
	}
	return result, true
}
