// Command icons resolves, lists and serves icons.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/icons/cmd/icons/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
