// Package cli defines the Cobra command tree for the forge CLI. Each file
// registers one top-level command with the root command. Commands resolve
// settings and the repository, then delegate to internal/scaffold; they only
// handle flag parsing and output formatting.
package cli
