// Command depscope inspects BUILD manifests as a target graph.
package main

import (
	"os"

	"github.com/depscope-dev/depscope/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
