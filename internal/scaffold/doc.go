// Package scaffold generates Lambda function projects inside the repository.
// It powers "forge function": the Orchestrator drives the dotnet templates,
// flattens the nesting the Lambda template introduces, wires project
// references and registers every project in the solution file. Each run is a
// fixed list of steps that stops at the first failure and leaves whatever it
// already created in place.
package scaffold
