// Command fvmctl is a thin operator CLI over go-fvm-core: it seeds a state
// tree from a JSON genesis description and applies one message against it,
// printing the resulting receipt. It is the only binary in this module
// permitted to call os.Exit — every library package returns errors instead.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fvmctl",
		Usage: "drive go-fvm-core's Executor from the command line",
		Flags: []cli.Flag{
			verbosityFlag, vmoduleFlag, logJSONFlag, logFileFlag, backtraceAtFlag,
			memprofilerateFlag,
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			applyCommand,
			versionCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fvmctl:", err)
		os.Exit(1)
	}
}
