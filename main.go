// Package main is the entry point for the agemetrics CLI tool, which reads
// decoded AoE2 action logs and computes per-player economy and strategy metrics.
package main

import "github.com/blzulian/agemetrics/cmd"

func main() {
	cmd.Execute()
}
