// Command gobuilder parses, formats and runs builder programs.
package main

import (
	"os"

	"github.com/sandrolain/gobuilder/cmd/gobuilder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
