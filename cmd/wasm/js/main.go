//go:build js && wasm

// Command gobuilder-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `gobuilder` object with the following API:
//
//	gobuilder.version()              → string
//	gobuilder.run(source[, entry])   → markup      (throws on error)
//	gobuilder.parse(source)          → treeJSON    (throws on error)
//	gobuilder.format(source)         → source      (throws on error)
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o gobuilder.wasm ./cmd/wasm/js/
//
// Usage in browser:
//
//	<script src="wasm_exec.js"></script>
//	<script>
//	  const go = new Go()
//	  WebAssembly.instantiateStreaming(fetch('gobuilder.wasm'), go.importObject)
//	    .then(r => { go.run(r.instance); document.body.innerHTML = gobuilder.run(src) })
//	</script>
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/gobuilder"
	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/ext"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

func sourceArg(fn string, args []js.Value) string {
	if len(args) < 1 {
		jsThrow(fmt.Sprintf("gobuilder.%s requires a source argument", fn))
	}
	return args[0].String()
}

// jsRun implements gobuilder.run(source[, entry]) → markup.
func jsRun(_ js.Value, args []js.Value) interface{} {
	source := sourceArg("run", args)
	entry := ""
	if len(args) > 1 {
		entry = args[1].String()
	}

	var out bytes.Buffer
	err := gobuilder.Run(context.Background(), source, entry,
		evaluator.WithRegistry(ext.Registry(&out)),
	)
	if err != nil {
		jsThrow(fmt.Sprintf("gobuilder.run: %v", err))
	}
	return out.String()
}

// jsParse implements gobuilder.parse(source) → treeJSON.
func jsParse(_ js.Value, args []js.Value) interface{} {
	prog, err := gobuilder.Compile(sourceArg("parse", args))
	if err != nil {
		jsThrow(fmt.Sprintf("gobuilder.parse: %v", err))
	}
	data, err := json.Marshal(prog.Functions())
	if err != nil {
		jsThrow(fmt.Sprintf("gobuilder.parse: marshal tree: %v", err))
	}
	return string(data)
}

// jsFormat implements gobuilder.format(source) → source.
func jsFormat(_ js.Value, args []js.Value) interface{} {
	out, err := gobuilder.Format(sourceArg("format", args))
	if err != nil {
		jsThrow(fmt.Sprintf("gobuilder.format: %v", err))
	}
	return out
}

func main() {
	api := map[string]interface{}{
		"run":     js.FuncOf(jsRun),
		"parse":   js.FuncOf(jsParse),
		"format":  js.FuncOf(jsFormat),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return gobuilder.Version()
		}),
	}
	js.Global().Set("gobuilder", js.ValueOf(api))

	// The JS event loop owns execution from here.
	select {}
}
