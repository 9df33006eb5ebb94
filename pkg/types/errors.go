package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a builder language error code.
type ErrorCode string

// Error codes. The first letter names the phase that produced the error.
const (
	// L01xx: Lexical errors. Always fatal.
	ErrStringNotClosed  ErrorCode = "L0101"
	ErrUnknownCharacter ErrorCode = "L0102"

	// S01xx/S02xx: Syntax errors. Recoverable only inside a backtracking attempt.
	ErrUnexpectedEnd      ErrorCode = "S0104"
	ErrMaxDepth           ErrorCode = "S0105"
	ErrInputTooLong       ErrorCode = "S0106"
	ErrSyntaxError        ErrorCode = "S0201"
	ErrExpectedToken      ErrorCode = "S0202"
	ErrExpectedKeyword    ErrorCode = "S0203"
	ErrExpectedIdentifier ErrorCode = "S0204"
	ErrExpectedValue      ErrorCode = "S0205"
	ErrExpectedType       ErrorCode = "S0206"
	ErrExpectedStatement  ErrorCode = "S0207"

	// E1xxx: Evaluation errors
	ErrExternalFunction  ErrorCode = "E1001"
	ErrUndefinedFunction ErrorCode = "E1002"
	ErrUnknownEntry      ErrorCode = "E1003"
	ErrStackOverflow     ErrorCode = "E1004"
	ErrHostFunction      ErrorCode = "E1005"
)

// Error represents a structured builder language error.
//
// Start and End delimit the half-open byte span the error refers to.
// Line and Column are 1-based and only filled in once the error has been
// located against its source (see Locate).
type Error struct {
	Code    ErrorCode
	Message string
	Start   int
	End     int
	Line    int
	Column  int
	Token   string
	Err     error
}

// NewError creates a new error covering the span [start, end).
func NewError(code ErrorCode, message string, start, end int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Start:   start,
		End:     end,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	switch {
	case e.Line > 0:
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Column)
	case e.Start >= 0:
		fmt.Fprintf(&b, " at position %d", e.Start)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Token != "" {
		fmt.Fprintf(&b, " ('%s')", e.Token)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds the offending source text to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Locate fills Line, Column and Token from the source the error was
// produced for. The line is one plus the number of newlines before Start;
// the column counts bytes from the last newline.
func (e *Error) Locate(source string) *Error {
	start := clamp(e.Start, 0, len(source))
	end := clamp(e.End, start, len(source))

	before := source[:start]
	e.Line = strings.Count(before, "\n") + 1
	e.Column = start - strings.LastIndexByte(before, '\n')
	if e.Token == "" {
		e.Token = source[start:end]
	}
	return e
}

// Span returns the byte span the error refers to.
func (e *Error) Span() Span {
	return Span{Start: e.Start, End: e.End}
}

// IsLexical reports whether err is a scanning error.
func IsLexical(err error) bool {
	return hasCodePrefix(err, 'L')
}

// IsSyntax reports whether err is a grammar error.
func IsSyntax(err error) bool {
	return hasCodePrefix(err, 'S')
}

// IsIncomplete reports whether err was caused by input ending too early,
// meaning more text could turn it into a valid program.
func IsIncomplete(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == ErrUnexpectedEnd || e.Code == ErrStringNotClosed
}

func hasCodePrefix(err error, prefix byte) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return len(e.Code) > 0 && e.Code[0] == prefix
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
