package executor

// No Wasm toolchain runs in this environment, so executor_test.go (like
// callmgr/manager_test.go before it) drives Apply against a fake
// callmgr.Invoker rather than a compiled actor binary — see
// callmgr/invoke.go's loadCode comment for the same constraint one layer
// down. A real deployment wires callmgr.NewWazeroInvoker, which compiles
// and instantiates genuine Wasm actor code through enginepool.
