// Package main implements portainer-cli, a command line client for the
// Portainer API aimed at deployment pipelines.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilhasoft/portainer-cli/pkg/envvars"
)

var (
	// Version is set at build time
	version = "dev"
	// BuildDate is set at build time
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
// --env.KEY=VALUE tokens are taken out before flag parsing.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rest, envArgs := envvars.SplitArgs(args)

	root := newRootCmd(envArgs)
	root.SetArgs(rest)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
