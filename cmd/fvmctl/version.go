package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Version is stamped by build tooling; left at "dev" for a plain `go build`.
var Version = "dev"

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print the fvmctl version",
	Action: func(c *cli.Context) error {
		fmt.Println("fvmctl", Version)
		return nil
	},
}
