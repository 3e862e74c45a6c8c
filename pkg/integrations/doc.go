// Package integrations provides HTTP clients for the remote APIs secure-sum
// talks to besides the probe runner.
//
// # Subpackages
//
//   - [crates]: crates.io, resolves a Rust crate to its source repository
//   - [github]: GitHub API, validates the token and reports the rate limit
//
// Node.js and NuGet packages need no lookup; the runner resolves them itself.
//
// # Shared Infrastructure
//
// The [Client] type provides the shared HTTP functionality used by all
// clients: response caching via [cache.Cache], a request rate limit, retry
// with backoff for transient failures, and observability hooks.
package integrations
