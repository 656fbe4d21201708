// Command wasmdom runs browser-targeted wasm guests outside the browser.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
