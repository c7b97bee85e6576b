package main

import (
	"os"

	"github.com/devs-assistent/server/internal/cli"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCmd(Version, Commit)))
}
