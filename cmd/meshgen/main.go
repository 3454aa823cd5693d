// Command meshgen evaluates mesh scripts and runs the mesh generators
// without the desktop frontend, writing buffers as JSON.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
