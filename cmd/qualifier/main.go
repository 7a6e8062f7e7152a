package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	// Entry point: create a root context and run the application once.
	// context.Background() is the top-level context; run derives a
	// signal-aware child from it so Ctrl+C aborts in-flight requests.
	ctx := context.Background()

	// Pass in the command line arguments, environment lookup and standard output
	// to the run function so it can be tested without the real process state.
	if err := run(ctx, os.Args, os.Getenv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
