// Package main implements cai, the offline learning pipeline for recorded
// coding-agent sessions: embed, extract and search.
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
