package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/geobind/gmt-go/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gmt-go:", err)
		os.Exit(1)
	}
}
