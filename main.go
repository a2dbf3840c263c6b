/*
Ignite opens a window, negotiates a Vulkan context for it and builds a
triangle pipeline. It keeps the window open until it is closed or the
process is interrupted.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/ignite/engine"
	"github.com/spaghettifunk/ignite/engine/core"
	"github.com/spaghettifunk/ignite/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration")
	envPath := flag.String("env", ".env", "optional dotenv file with IGNITE_* overrides")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath, *envPath)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}

	tb := testbed.NewTestGame()

	engine, err := engine.New(cfg, tb.Game)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err)
	}

	if err := engine.Initialize(); err != nil {
		_ = engine.Shutdown()
		core.LogFatal("failed to initialize engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop goroutine; the window must be torn down on the main thread
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		engine.Stop()
	}()

	// run engine
	runErr := engine.Run()
	if err := engine.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("engine stopped: %s", runErr)
	}
}
