// Package pkgdb queries and drives a pacman-compatible package manager.
//
// The binary name is a parameter of [Client] (yay by default, any tool that
// accepts pacman's query flags works: pacman, paru, yay). Every call runs the
// tool through a [command.Runner], so tests can substitute a scripted fake.
//
// Queries that exit unsuccessfully are returned as errors with code
// TOOL_FAILURE and the tool's stderr attached. A failed install is returned
// with code INSTALL_FAILED so callers can treat it as recoverable.
package pkgdb
