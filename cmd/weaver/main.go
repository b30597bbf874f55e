package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/simonhull/firebird-suite/weaver/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.RootCmd()
	rootCmd.SetContext(ctx)

	if err := commands.Execute(rootCmd, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
