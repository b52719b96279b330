package main

import (
	"fmt"
	"os"

	"github.com/septivank/earthquake-catalog/internal/cli"
	"github.com/septivank/earthquake-catalog/internal/config"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
)

func main() {
	config.LoadDotEnv()

	if err := cli.NewRootCommand().Execute(); err != nil {
		if earthquake.IsRetryable(err) {
			fmt.Fprintln(os.Stderr, "The earthquake service is temporarily unavailable, please try again.")
		}
		os.Exit(1)
	}
}
