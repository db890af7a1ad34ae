package main

import (
	"os"

	"github.com/wonny/symfx/cmd/symfx/commands"
)

// main is the entry point for the desk CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/symfx [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
