// Package process runs external tools synchronously with their output
// captured, turning a non-zero exit into an *ExternalToolError that carries
// everything needed to diagnose the failure.
package process
