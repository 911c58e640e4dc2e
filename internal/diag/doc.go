// Package diag defines the diagnostic model shared by the IR builder, the CFG
// builder, the dataflow engine and every analysis pass.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error. Info and Warning are findings about
//     the analyzed circuit; Error is reserved for recoverable and internal
//     analysis failures.
//   - Code: compact numeric identifier (see codes.go) with a stable string
//     form (Code.ID) and a stable rule name (Code.Name) used by configuration.
//   - Message: short, actionable text.
//   - Primary: the source.Span the finding is about.
//   - Notes: secondary spans ("shadowed declaration is here").
//
// # Emitting
//
// Producers talk to a Reporter. ReportWarning / ReportInfo / ReportError
// return a ReportBuilder that collects notes before Emit. BagReporter stores
// into a Bag; each function/template owns its own Bag so workers never share
// mutable state, and the driver merges bags in a fixed order before sorting.
//
// Package diag does no formatting or IO beyond the single-line form in
// short.go; rendering lives in internal/diagfmt.
package diag
