// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Chainmaster.
//
// Usage:
//
//	go run . [flags]
//	./chainmaster [flags]
//
// See --help for the available commands.
package main

import (
	"log"
	"os"

	"github.com/toeirei/chainmaster/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("chainmaster: %v", err)
		os.Exit(1)
	}
}
