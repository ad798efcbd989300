// Package rebuild walks an ordered plan of packages and reinstalls the ones
// whose binaries reference missing shared libraries.
//
// The plan comes from [dag.Graph.Order]: dependencies first, dependents
// after. The [Orchestrator] never reorders or edits it. Each package moves
// through the states
//
//	pending → checked → {skipped | needs-rebuild} → {installed | failed | skipped-by-user}
//
// with two side exits: missing (no longer installed) and ignored (listed in
// [Options.Ignore]).
//
// Query failures stop the run and are returned together with the report
// gathered so far. Install failures are recorded; in interactive mode the
// [Confirmer] decides whether the run continues, and a refusal leaves every
// later package pending.
//
// [dag.Graph.Order]: github.com/matzehuels/relink/pkg/dag.Graph.Order
package rebuild
