package parser

import (
	"fmt"

	"github.com/sandrolain/gobuilder/pkg/types"
)

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdentifier // name
	TokenString     // "hello"
	TokenNumber     // 42, .5, 3.14

	// Grouping symbols
	TokenParenOpen  // (
	TokenParenClose // )
	TokenBraceOpen  // {
	TokenBraceClose // }

	// Punctuation and operators
	TokenDot       // .
	TokenComma     // ,
	TokenColon     // :
	TokenPlus      // +
	TokenMinus     // -
	TokenEquals    // =
	TokenSemicolon // ;
	TokenArrow     // ->
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenIdentifier:
		return "(identifier)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenBraceOpen:
		return "{"
	case TokenBraceClose:
		return "}"
	case TokenDot:
		return "."
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenEquals:
		return "="
	case TokenSemicolon:
		return ";"
	case TokenArrow:
		return "->"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token.
//
// Value holds the identifier text for TokenIdentifier, the decoded content
// for TokenString and the literal text for TokenNumber; Number holds the
// parsed value of a TokenNumber. Start and End delimit the half-open byte
// span the token was scanned from.
type Token struct {
	Type   TokenType
	Value  string
	Number float64
	Start  int
	End    int
}

// Span returns the byte span of the token.
func (t Token) Span() types.Span {
	return types.Span{Start: t.Start, End: t.End}
}

// String describes the token for diagnostics.
func (t Token) String() string {
	switch t.Type {
	case TokenIdentifier:
		return fmt.Sprintf("identifier '%s'", t.Value)
	case TokenString:
		return fmt.Sprintf("string %q", t.Value)
	case TokenNumber:
		return fmt.Sprintf("number %s", t.Value)
	case TokenEOF:
		return "end of input"
	default:
		return fmt.Sprintf("'%s'", t.Type)
	}
}

// symbols1 maps single-character symbols to token types.
// '-' and '.' are absent: they start "->" and numbers respectively.
var symbols1 = [...]TokenType{
	'(': TokenParenOpen,
	')': TokenParenClose,
	'{': TokenBraceOpen,
	'}': TokenBraceClose,
	',': TokenComma,
	':': TokenColon,
	'+': TokenPlus,
	'=': TokenEquals,
	';': TokenSemicolon,
}

const symbol1Count = rune(len(symbols1))

// lookupSymbol1 returns the token type for a single-character symbol.
// Returns 0 if the rune is not a valid symbol.
func lookupSymbol1(r rune) TokenType {
	if r < 0 || r >= symbol1Count {
		return 0
	}
	return symbols1[r]
}
