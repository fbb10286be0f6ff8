// Command tesi is a spreadsheet calculator: it evaluates formulas,
// edits and renders sheet files, and recalculates dependents on every
// change.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
