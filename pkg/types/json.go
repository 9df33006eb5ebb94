package types

import "encoding/json"

// The union members marshal with a "kind" discriminator so that the
// serialized tree keeps the closed set of shapes visible.

// MarshalJSON implements json.Marshaler for Call.
func (n *Call) MarshalJSON() ([]byte, error) {
	type call Call
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*call
	}{"call", (*call)(n)})
}

// MarshalJSON implements json.Marshaler for Assignment.
func (n *Assignment) MarshalJSON() ([]byte, error) {
	type assignment Assignment
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*assignment
	}{"assignment", (*assignment)(n)})
}

// MarshalJSON implements json.Marshaler for UnaryOperator.
func (n *UnaryOperator) MarshalJSON() ([]byte, error) {
	type unary UnaryOperator
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*unary
	}{"unary", (*unary)(n)})
}

// MarshalJSON implements json.Marshaler for NamedParameter.
func (p NamedParameter) MarshalJSON() ([]byte, error) {
	type named NamedParameter
	return json.Marshal(struct {
		Kind string `json:"kind"`
		named
	}{"named", named(p)})
}

// MarshalJSON implements json.Marshaler for SingleParameter.
func (p SingleParameter) MarshalJSON() ([]byte, error) {
	type single SingleParameter
	return json.Marshal(struct {
		Kind string `json:"kind"`
		single
	}{"single", single(p)})
}

// MarshalJSON implements json.Marshaler for StringValue.
func (v StringValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		Content string `json:"content"`
	}{"string", v.Content})
}

// MarshalJSON implements json.Marshaler for NumberValue.
func (v NumberValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string  `json:"kind"`
		Number float64 `json:"number"`
	}{"number", v.Number})
}

// MarshalJSON implements json.Marshaler for FunctionValue.
func (v FunctionValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Call *Call  `json:"call"`
	}{"function", v.Call})
}

// MarshalJSON implements json.Marshaler for EnumValue.
func (v EnumValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Type string `json:"type"`
		Name string `json:"name"`
	}{"enum", v.Type, v.Name})
}
