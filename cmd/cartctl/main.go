// Command cartctl drives the storefront cart from a terminal. Every
// invocation is one tab on the configured storage area, so several shells
// (or a long-running "cartctl watch") behave like several browser tabs.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		code, msg := exitCode(err)
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(code)
	}
}
