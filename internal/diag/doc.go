// Package diag defines the diagnostic model shared by every compiler phase.
//
// A Diagnostic carries a Severity, a stable Code (rendered as a category
// prefix plus number, e.g. SYN2001 or SEM3002), a message, a primary span and
// optional notes pointing at related locations.
//
// Phases never print. They report through a Reporter; BagReporter collects
// into a Bag, which the driver sorts, deduplicates and hands back to the
// caller. Rendering lives in internal/diagfmt.
//
// Severity policy of the compiler:
//
//   - lexical, preprocessor and syntax errors are fatal for the unit;
//   - semantic errors are accumulated so one run shows all of them;
//   - emission never produces diagnostics, invariant violations are Go errors.
package diag
