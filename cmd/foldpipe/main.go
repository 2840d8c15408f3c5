// foldpipe - client for the folding pipeline server
package main

import (
	"os"

	"github.com/foldlab/foldpipe/internal/cli"
	"github.com/foldlab/foldpipe/internal/version"
)

// Version information, overridden by -ldflags at release build time
var (
	Version   = "v0.3.0"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
