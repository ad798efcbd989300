// Package command runs the external tools relink depends on.
//
// Every external process is described by an [Invocation] tagged with a
// [Class]. The class selects the timeout applied by [Exec]: inspections of a
// single binary are expected to be quick, package database queries a little
// slower, and installs (which build from source) may take a long time. A
// process that outlives its timeout is killed and reported as an error with
// code TIMEOUT instead of hanging the run.
//
// A non-zero exit status is not an error at this layer. [Result] carries the
// exit code and captured output, and callers decide whether a failure is
// fatal (a query) or recoverable (an inspection or an install).
package command
