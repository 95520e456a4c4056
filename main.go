package main

import (
	"github.com/nwatteau/linktrap/cmd"

	// Subcommands register themselves on the root command in their init().
	_ "github.com/nwatteau/linktrap/cmd/cli"
	_ "github.com/nwatteau/linktrap/cmd/server"
)

func main() {
	cmd.Execute()
}
