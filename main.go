// sniffterm - a serial-link terminal with silent raw capture.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sniffterm/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sniffterm: %v\n", err)
		os.Exit(1)
	}
}
