// Command fxrender applies effect stacks to image files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fxrender:", err)
		os.Exit(1)
	}
}
