// Command slowverb renders a synthetic signal through the slowed + reverb
// transform and prints a processing report.
//
// Usage:
//
//	slowverb [--log-level level] <command> [flags]
//
// Commands:
//
//	render  - synthesize a click track and tone, slow it down, add reverb
//	config  - print the default YAML configuration
//
// Examples:
//
//	slowverb render
//	slowverb render --bpm 70 --amount 0.8 --mode fft --seconds 10
//	slowverb render --config slowverb.yaml --output out.wav
//	slowverb config > slowverb.yaml
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/slowverb/cmd/slowverb/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
