// Package toolchain maps forge's external collaborators (function, library
// and test generators, the reference linker and the solution tool) onto the
// dotnet CLI.
package toolchain
