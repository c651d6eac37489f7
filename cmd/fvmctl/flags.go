package main

import (
	"runtime"

	"github.com/urfave/cli/v2"
)

// Logging flags, grounded on go-ethereum's internal/debug package: the same
// verbosity/vmodule/json/backtrace surface, wired to go-fvm-core/log
// instead of go-ethereum/log.
var (
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	vmoduleFlag = &cli.StringFlag{
		Name:  "vmodule",
		Usage: "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. callmgr=5,kernel=4)",
		Value: "",
	}
	logJSONFlag = &cli.BoolFlag{
		Name:  "log.json",
		Usage: "Format logs as JSON instead of the default terminal format",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write rotating logs to this path in addition to stderr",
		Value: "",
	}
	backtraceAtFlag = &cli.StringFlag{
		Name:  "log.backtrace",
		Usage: "Request a stack trace at a specific logging statement (e.g. \"executor.go:120\")",
		Value: "",
	}
)

// apply command flags: enough to exercise one Executor.Apply call end to
// end against a JSON-described actor set, without depending on a running
// chain node for any of executor.Config's externs.
var (
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Directory for a persistent goleveldb blockstore; empty uses an in-memory store",
		Value: "",
	}
	genesisFlag = &cli.StringFlag{
		Name:     "genesis",
		Usage:    "Path to a JSON file describing the manifest and seed actors (see genesis.go)",
		Required: true,
	}
	fromFlag = &cli.Uint64Flag{
		Name:     "from",
		Usage:    "Sender actor id",
		Required: true,
	}
	toFlag = &cli.Uint64Flag{
		Name:     "to",
		Usage:    "Receiver actor id",
		Required: true,
	}
	methodFlag = &cli.Uint64Flag{
		Name:  "method",
		Usage: "Method number to invoke (0 = bare value transfer)",
		Value: 0,
	}
	valueFlag = &cli.StringFlag{
		Name:  "value",
		Usage: "Value to transfer, as a base-10 attoFIL string",
		Value: "0",
	}
	paramsFlag = &cli.StringFlag{
		Name:  "params",
		Usage: "Hex-encoded method parameters",
		Value: "",
	}
	gasLimitFlag = &cli.Int64Flag{
		Name:  "gas-limit",
		Usage: "Message gas limit",
		Value: 1_000_000,
	}
	gasFeeCapFlag = &cli.StringFlag{
		Name:  "gas-fee-cap",
		Usage: "Gas fee cap, as a base-10 attoFIL string",
		Value: "1000",
	}
	gasPremiumFlag = &cli.StringFlag{
		Name:  "gas-premium",
		Usage: "Gas premium, as a base-10 attoFIL string",
		Value: "100",
	}
	baseFeeFlag = &cli.StringFlag{
		Name:  "base-fee",
		Usage: "Network base fee for this epoch, as a base-10 attoFIL string",
		Value: "100",
	}
	epochFlag = &cli.Int64Flag{
		Name:  "epoch",
		Usage: "Chain epoch the message executes at",
		Value: 1,
	}
	implicitFlag = &cli.BoolFlag{
		Name:  "implicit",
		Usage: "Apply as an implicit (cron/reward-style) message: bypasses nonce/fee checks and settlement",
	}
	maxCallDepthFlag = &cli.IntFlag{
		Name:  "max-call-depth",
		Usage: "Maximum recursive Send depth permitted for this run's engine pool",
		Value: 1024,
	}
	moduleCacheSizeFlag = &cli.IntFlag{
		Name:  "module-cache-size",
		Usage: "Number of compiled Wasm modules kept hot in the engine pool's cache",
		Value: 64,
	}
	memprofilerateFlag = &cli.IntFlag{
		Name:  "pprof.memprofilerate",
		Usage: "Turn on memory profiling with the given rate",
		Value: runtime.MemProfileRate,
	}
)
