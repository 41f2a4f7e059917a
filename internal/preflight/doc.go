// Package preflight provides readiness checks for the binaries and
// filesystem paths Scribe depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and refuses to serve when a
//     required check fails.
//   - The CLI status command surfaces the same results to operators.
package preflight
