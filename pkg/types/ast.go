package types

// Span is a half-open byte interval [Start, End) in the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Unary operators accepted at statement level.
const (
	OpPlus  = "+"
	OpMinus = "-"
)

// Function is a parsed function definition: a header plus its body.
// External functions always have an empty body.
type Function struct {
	Header FunctionHeader `json:"header"`
	Body   []Node         `json:"body"`
}

// FunctionHeader is the signature part of a function.
//
// Receiver and ReturnType are empty when absent. Types are kept as
// formatted strings (see the type expression rule in the parser); no type
// checking happens on them.
type FunctionHeader struct {
	External   bool               `json:"external"`
	Receiver   string             `json:"receiver,omitempty"`
	Name       string             `json:"name"`
	Arguments  []FunctionArgument `json:"arguments"`
	ReturnType string             `json:"returnType,omitempty"`
	Pos        Span               `json:"span"`
}

// FunctionArgument is a declared argument of a function header.
type FunctionArgument struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Node is a statement inside a function or call body.
// The set of implementations is closed: *Call, *Assignment, *UnaryOperator.
type Node interface {
	Position() Span
	node()
}

// Call invokes a function by name, optionally on a receiver, with
// positional parameters and a nested body of child statements.
type Call struct {
	Receiver   string      `json:"receiver,omitempty"`
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	Children   []Node      `json:"children"`
	Pos        Span        `json:"span"`
}

// Assignment binds a value to a variable name.
type Assignment struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
	Pos   Span   `json:"span"`
}

// UnaryOperator applies "+" or "-" to a value at statement level.
type UnaryOperator struct {
	Operator string `json:"operator"`
	Value    Value  `json:"value"`
	Pos      Span   `json:"span"`
}

func (n *Call) Position() Span          { return n.Pos }
func (n *Assignment) Position() Span    { return n.Pos }
func (n *UnaryOperator) Position() Span { return n.Pos }

func (*Call) node()          {}
func (*Assignment) node()    {}
func (*UnaryOperator) node() {}

// Parameter is an entry of a call's parameter list.
// The set of implementations is closed: NamedParameter, SingleParameter.
//
// The grammar only produces SingleParameter today; NamedParameter exists
// for hosts that build trees programmatically.
type Parameter interface {
	ParamValue() Value
	parameter()
}

// NamedParameter is a "name = value" parameter.
type NamedParameter struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// SingleParameter is a positional parameter.
type SingleParameter struct {
	Value Value `json:"value"`
}

func (p NamedParameter) ParamValue() Value  { return p.Value }
func (p SingleParameter) ParamValue() Value { return p.Value }

func (NamedParameter) parameter()  {}
func (SingleParameter) parameter() {}

// Value is an operand: a literal, a nested call or an enum reference.
// The set of implementations is closed: StringValue, NumberValue,
// FunctionValue, EnumValue.
type Value interface {
	value()
}

// StringValue is a decoded string literal.
type StringValue struct {
	Content string `json:"content"`
}

// NumberValue is a numeric literal.
type NumberValue struct {
	Number float64 `json:"number"`
}

// FunctionValue is a call used in value position.
type FunctionValue struct {
	Call *Call `json:"call"`
}

// EnumValue is a "Type.Member" reference.
type EnumValue struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (StringValue) value()   {}
func (NumberValue) value()   {}
func (FunctionValue) value() {}
func (EnumValue) value()     {}
