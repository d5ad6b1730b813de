package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Interrupted runs already logged their state; keep exit quiet.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "cinefill:", err)
		}
		os.Exit(1)
	}
}
