package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandrolain/gobuilder/pkg/types"
)

// Parser implements a backtracking recursive descent parser for the
// builder language.
type Parser struct {
	source string
	cursor *Cursor
	opts   CompileOptions
	depth  int
}

// NewParser creates a new parser for the given source.
func NewParser(source string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Parser{
		source: source,
		opts:   options,
	}
}

// Parse tokenizes and parses the whole source.
func (p *Parser) Parse() (*types.Program, error) {
	if p.opts.MaxInputLength > 0 && len(p.source) > p.opts.MaxInputLength {
		msg := fmt.Sprintf("Input exceeds maximum length: %d > %d", len(p.source), p.opts.MaxInputLength)
		return nil, types.NewError(types.ErrInputTooLong, msg, 0, 0).Locate(p.source)
	}

	tokens, err := Tokenize(p.source, p.opts.lexerOptions()...)
	if err != nil {
		return nil, p.locate(err)
	}

	p.cursor = NewCursor(tokens, len(p.source))
	p.depth = 0

	functions, err := p.parseFile()
	if err != nil {
		return nil, p.locate(err)
	}

	return types.NewProgram(functions, p.source), nil
}

// locate attaches line, column and source text to a positioned error.
func (p *Parser) locate(err error) error {
	var e *types.Error
	if errors.As(err, &e) {
		return e.Locate(p.source)
	}
	return err
}

// parseFile parses functions until the tokens are exhausted.
func (p *Parser) parseFile() ([]types.Function, error) {
	var functions []types.Function
	for !p.cursor.Done() {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		functions = append(functions, fn)
	}
	return functions, nil
}

// parseFunction parses a header and, unless it is external, a body.
func (p *Parser) parseFunction() (types.Function, error) {
	header, err := p.parseFunctionHeader()
	if err != nil {
		return types.Function{}, err
	}
	if header.External {
		return types.Function{Header: header}, nil
	}

	body, err := p.parseBody()
	if err != nil {
		return types.Function{}, err
	}
	return types.Function{Header: header, Body: body}, nil
}

// parseFunctionHeader parses
//
//	[external] [operator] fun [Receiver.]name(arg: Type, ...) [: Type]
func (p *Parser) parseFunctionHeader() (types.FunctionHeader, error) {
	c := p.cursor
	start := c.Current().Start

	external := p.tryKeyword("external")
	// "operator" is accepted but carries no meaning
	p.tryKeyword("operator")

	if err := c.ExpectKeyword("fun"); err != nil {
		return types.FunctionHeader{}, err
	}

	receiver, _ := Try(c, p.parseReceiverPrefix)

	name, err := c.ExpectIdentifier()
	if err != nil {
		return types.FunctionHeader{}, err
	}

	if err := c.Expect(TokenParenOpen); err != nil {
		return types.FunctionHeader{}, err
	}
	var arguments []types.FunctionArgument
	for c.Current().Type != TokenParenClose {
		arg, err := p.parseArgument()
		if err != nil {
			return types.FunctionHeader{}, err
		}
		arguments = append(arguments, arg)
		if c.Current().Type != TokenComma {
			break
		}
		c.Advance()
	}
	if err := c.Expect(TokenParenClose); err != nil {
		return types.FunctionHeader{}, err
	}

	returnType, _ := Try(c, p.parseReturnType)

	return types.FunctionHeader{
		External:   external,
		Receiver:   receiver,
		Name:       name,
		Arguments:  arguments,
		ReturnType: returnType,
		Pos:        types.Span{Start: start, End: c.LastEnd()},
	}, nil
}

// tryKeyword consumes keyword if it is the current token.
func (p *Parser) tryKeyword(keyword string) bool {
	_, ok := Try(p.cursor, func() (struct{}, error) {
		return struct{}{}, p.cursor.ExpectKeyword(keyword)
	})
	return ok
}

// parseReceiverPrefix parses "Receiver." and returns the receiver name.
func (p *Parser) parseReceiverPrefix() (string, error) {
	name, err := p.cursor.ExpectIdentifier()
	if err != nil {
		return "", err
	}
	if err := p.cursor.Expect(TokenDot); err != nil {
		return "", err
	}
	return name, nil
}

// parseReturnType parses ": Type".
func (p *Parser) parseReturnType() (string, error) {
	if err := p.cursor.Expect(TokenColon); err != nil {
		return "", err
	}
	return p.parseType()
}

// parseArgument parses "name: Type".
func (p *Parser) parseArgument() (types.FunctionArgument, error) {
	name, err := p.cursor.ExpectIdentifier()
	if err != nil {
		return types.FunctionArgument{}, err
	}
	if err := p.cursor.Expect(TokenColon); err != nil {
		return types.FunctionArgument{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return types.FunctionArgument{}, err
	}
	return types.FunctionArgument{Name: name, Type: typ}, nil
}

// parseType parses a type expression and returns it formatted:
//
//	Name
//	(T1, T2) -> R
//	Receiver.(T1, T2) -> R
func (p *Parser) parseType() (string, error) {
	c := p.cursor
	cur := c.Current()

	switch {
	case cur.Type == TokenParenOpen:
		return p.parseFunctionType("")
	case cur.Type == TokenIdentifier && c.NextIs(TokenDot):
		c.Advance() // receiver
		c.Advance() // .
		return p.parseFunctionType(cur.Value)
	case cur.Type == TokenIdentifier:
		c.Advance()
		return cur.Value, nil
	default:
		return "", c.errorf(types.ErrExpectedType, "Expected type, but found %s", cur)
	}
}

// parseFunctionType parses "(T1, T2) -> R" after an optional receiver.
func (p *Parser) parseFunctionType(receiver string) (string, error) {
	if err := p.enter(); err != nil {
		return "", err
	}
	defer p.leave()

	c := p.cursor
	if err := c.Expect(TokenParenOpen); err != nil {
		return "", err
	}
	var params []string
	for c.Current().Type != TokenParenClose {
		typ, err := p.parseType()
		if err != nil {
			return "", err
		}
		params = append(params, typ)
		if c.Current().Type != TokenComma {
			break
		}
		c.Advance()
	}
	if err := c.Expect(TokenParenClose); err != nil {
		return "", err
	}
	if err := c.Expect(TokenArrow); err != nil {
		return "", err
	}
	ret, err := p.parseType()
	if err != nil {
		return "", err
	}

	typ := "(" + strings.Join(params, ", ") + ") -> " + ret
	if receiver != "" {
		typ = receiver + "." + typ
	}
	return typ, nil
}

// parseBody parses "{ statement* }".
func (p *Parser) parseBody() ([]types.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	c := p.cursor
	if err := c.Expect(TokenBraceOpen); err != nil {
		return nil, err
	}
	var body []types.Node
	for c.Current().Type != TokenBraceClose {
		node, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, node)
	}
	if err := c.Expect(TokenBraceClose); err != nil {
		return nil, err
	}
	return body, nil
}

// parseStatement dispatches on the current token: an identifier followed
// by "=" starts an assignment, any other identifier a call, "+" or "-" a
// unary operator.
func (p *Parser) parseStatement() (types.Node, error) {
	c := p.cursor
	cur := c.Current()

	switch cur.Type {
	case TokenIdentifier:
		if c.NextIs(TokenEquals) {
			return p.parseAssignment()
		}
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		return call, nil
	case TokenPlus, TokenMinus:
		return p.parseUnaryOperator()
	default:
		return nil, c.errorf(types.ErrExpectedStatement, "Expected unary operator, but found %s", cur)
	}
}

// parseAssignment parses "name = value".
func (p *Parser) parseAssignment() (types.Node, error) {
	c := p.cursor
	start := c.Current().Start

	name, err := c.ExpectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := c.Expect(TokenEquals); err != nil {
		return nil, err
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &types.Assignment{
		Name:  name,
		Value: value,
		Pos:   types.Span{Start: start, End: c.LastEnd()},
	}, nil
}

// parseUnaryOperator parses "+value" or "-value".
func (p *Parser) parseUnaryOperator() (types.Node, error) {
	c := p.cursor
	cur := c.Current()

	op := types.OpPlus
	if cur.Type == TokenMinus {
		op = types.OpMinus
	}
	c.Advance()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &types.UnaryOperator{
		Operator: op,
		Value:    value,
		Pos:      types.Span{Start: cur.Start, End: c.LastEnd()},
	}, nil
}

// parseCall parses
//
//	[Receiver.]name [( value* )] [{ statement* }]
//
// Parameters are separated by whitespace only and are always positional.
func (p *Parser) parseCall() (*types.Call, error) {
	c := p.cursor
	start := c.Current().Start

	receiver, _ := Try(c, p.parseReceiverPrefix)

	name, err := c.ExpectIdentifier()
	if err != nil {
		return nil, err
	}

	var params []types.Parameter
	if c.Current().Type == TokenParenOpen {
		c.Advance()
		for c.Current().Type != TokenParenClose {
			value, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			params = append(params, types.SingleParameter{Value: value})
		}
		c.Advance() // )
	}

	var children []types.Node
	if c.Current().Type == TokenBraceOpen {
		children, err = p.parseBody()
		if err != nil {
			return nil, err
		}
	}

	return &types.Call{
		Receiver:   receiver,
		Name:       name,
		Parameters: params,
		Children:   children,
		Pos:        types.Span{Start: start, End: c.LastEnd()},
	}, nil
}

// parseValue parses a literal, an enum reference or a nested call.
//
// An identifier followed by "." is an enum reference ("Type.Member")
// unless the member is immediately followed by "(", in which case it is a
// call on a receiver ("Receiver.call(...)").
func (p *Parser) parseValue() (types.Value, error) {
	c := p.cursor
	cur := c.Current()

	switch cur.Type {
	case TokenString:
		c.Advance()
		return types.StringValue{Content: cur.Value}, nil
	case TokenNumber:
		c.Advance()
		return types.NumberValue{Number: cur.Number}, nil
	case TokenIdentifier:
		if c.NextIs(TokenDot) && !p.receiverCallAhead() {
			c.Advance() // type
			c.Advance() // .
			member, err := c.ExpectIdentifier()
			if err != nil {
				return nil, err
			}
			return types.EnumValue{Type: cur.Value, Name: member}, nil
		}

		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		return types.FunctionValue{Call: call}, nil
	default:
		return nil, c.errorf(types.ErrExpectedValue, "Expected value, but found %s", cur)
	}
}

// receiverCallAhead reports whether the tokens at the cursor read
// "identifier . identifier (".
func (p *Parser) receiverCallAhead() bool {
	member, ok := p.cursor.PeekAt(2)
	if !ok || member.Type != TokenIdentifier {
		return false
	}
	open, ok := p.cursor.PeekAt(3)
	return ok && open.Type == TokenParenOpen
}

// enter increments the nesting depth, failing past MaxDepth.
func (p *Parser) enter() error {
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		p.depth--
		cur := p.cursor.Current()
		return types.NewError(types.ErrMaxDepth,
			fmt.Sprintf("Maximum nesting depth %d exceeded", p.opts.MaxDepth),
			cur.Start, cur.End)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}
