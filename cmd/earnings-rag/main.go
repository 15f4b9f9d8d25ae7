package main

import (
	"os"

	"github.com/rootiq-ai/earnings-rag-app/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
