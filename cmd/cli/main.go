package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/quizera/internal/buildinfo"
	"github.com/dmitrijs2005/quizera/internal/client/cli"
	"github.com/dmitrijs2005/quizera/internal/client/config"
	"github.com/dmitrijs2005/quizera/internal/logging"
)

// exitCodeInterrupted is the shell convention for termination by SIGINT.
const exitCodeInterrupted = 130

// watchSignals calls onSignal for the first signal received on sigs. It
// returns without calling it once done is closed.
func watchSignals(sigs <-chan os.Signal, done <-chan struct{}, onSignal func(os.Signal)) {
	select {
	case s := <-sigs:
		onSignal(s)
	case <-done:
	}
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// The REPL blocks on stdin, so an interrupt exits from the watcher.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	done := make(chan struct{})
	defer close(done)

	go watchSignals(sigs, done, func(os.Signal) {
		cancel()
		_ = app.Close()
		os.Exit(exitCodeInterrupted)
	})

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
		os.Exit(1)
	}
}
