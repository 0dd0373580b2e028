// Command myschema inspects MySQL schemas through information_schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/myschema/internal/cli"
	"github.com/koustreak/myschema/internal/errs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "myschema: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errs.IsInvalidInput(err), errs.IsParseFailed(err):
		return 2
	case errs.IsNotFound(err):
		return 3
	default:
		return 1
	}
}
