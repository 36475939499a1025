package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caseflow/caseflow/cmd/caseflow/commands"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received interrupt signal, shutting down")
		cancel()
	}()

	if err := commands.Execute(ctx, Version, Commit, BuildDate); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(workflow.ExitCodeFor(err))
	}
}
