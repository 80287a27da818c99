// Command buzzc is the front end's CLI entry point (spec §6): it exposes
// the parser/resolver as `buzzc ast` (JSON AST dump) and `buzzc check`
// (diagnostics only), following the teacher's cmd/dwscript layout.
package main

import (
	"fmt"
	"os"

	"github.com/UpperCi/buzz/cmd/buzzc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
