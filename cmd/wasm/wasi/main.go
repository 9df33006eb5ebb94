//go:build wasip1

// Command gobuilder-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin, single JSON object on stdout.
//
//	stdin:  { "source": "<program>", "entry": "<function name, optional>" }
//	stdout: { "output": "<markup>" }                                on success
//	        { "error": "<message>", "code": "S0204", "line": 1, "column": 5 }
//	                                                                on failure (exit code 1)
//
// The markup functions (html, body, div, a, "+", "-") and the value
// functions (upper, concat, sum, ...) are registered.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gobuilder.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"source":"fun f() { html { +\"hi\" } }"}' | wasmtime gobuilder.wasm
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/sandrolain/gobuilder"
	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/ext"
	"github.com/sandrolain/gobuilder/pkg/types"
)

type request struct {
	Source string `json:"source"`
	Entry  string `json:"entry"`
}

type response struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func errorResponse(err error) response {
	r := response{Error: err.Error()}
	var e *types.Error
	if errors.As(err, &e) {
		r.Error = e.Message
		r.Code = string(e.Code)
		r.Line = e.Line
		r.Column = e.Column
	}
	return r
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	var out bytes.Buffer
	err := gobuilder.Run(context.Background(), req.Source, req.Entry,
		evaluator.WithRegistry(ext.Registry(&out)),
	)
	if err != nil {
		writeResponse(errorResponse(err), 1)
	}

	writeResponse(response{Output: out.String()}, 0)
}
