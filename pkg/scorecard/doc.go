// Package scorecard runs the external probe runner for every target that
// needs fresh data.
//
// # Dispatch
//
// [Dispatcher.Dispatch] evaluates all targets concurrently in a bounded
// worker pool. Per target it either reuses the stored probe record (see
// [probe.NeedsRerun]) or invokes the runner:
//
//	<runner> --repo=<url> --probes=a,b,c --format=probe
//
// Node.js and NuGet packages are handed to the runner directly (--npm=,
// --nuget=); other ecosystems are first resolved to a repository URL through
// a [RepoLookup].
//
// # Failure handling
//
// The two failure classes are treated differently on purpose:
//
//   - Anything the runner writes to stderr, unusable stdout, and a failed
//     repository lookup fail only that target. An error record is stored
//     and the remaining targets continue.
//   - Exceeding the per-target timeout aborts the whole dispatch with an
//     [errors.ErrCodeTimeout] error. A stalled runner almost always means
//     the GitHub rate limit is exhausted, which affects every target alike.
//
// Failures to read or write the probe store, or to start the runner at all,
// are fatal as well.
package scorecard
