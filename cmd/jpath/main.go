package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/jpath/internal/exit"
)

func main() {
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand(os.Stdin)
	if err := cmd.ExecuteContext(ctx); err != nil {
		result := exit.FromError(err)
		result.Print()
		return result.ExitCode
	}
	return exit.CodeSuccess
}
