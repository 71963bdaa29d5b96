package main

import (
	"fmt"
	"os"

	"github.com/rpggio/proofescrow/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "escrowd: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
