package main

import (
	"os"

	"github.com/MegatronPika/question-bank-system/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
