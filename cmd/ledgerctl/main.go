package main

import (
	"context"
	"fmt"
	"os"

	"retailtracker/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
