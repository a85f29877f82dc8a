// Package probe runs an external route-tracing probe and streams its output.
//
// A [Runner] starts exactly one probe process per [Runner.Start] call and
// guarantees that it terminates: either the process exits, it is cancelled
// through [Run.Cancel] or its context, or a hard wall-clock timeout kills it.
// Output is consumed incrementally, split into lines and handed to the
// [Callbacks]; lines that parse as hops are additionally delivered as
// [hop.Record] values.
//
// The lifecycle of a [Run] is a small state machine:
//
//	Running ──Cancel/timeout──▶ Cancelling ──exit──▶ Completed
//	Running ──────────exit/error──────────────────▶ Completed
//
// Completion is a one-shot latch: OnComplete fires exactly once, no callback
// fires after it, and all callbacks of one run are serialised.
//
// The probe is never started through a shell; the target is passed as a
// discrete argument.
package probe
