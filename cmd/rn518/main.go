package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vcollos/dashboard-rn518/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
