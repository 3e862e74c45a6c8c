// Package crates resolves Rust crates to their source repositories using the
// crates.io API (https://crates.io).
//
// The probe runner only understands repository URLs for Rust, so every crate
// dependency is looked up here first:
//
//	client := crates.NewClient(backend, 24*time.Hour)
//	url, err := client.RepoURL(ctx, "serde")
//	// url == "https://github.com/serde-rs/serde"
//
// crates.io asks API users for a descriptive User-Agent and at most one
// request per second; the client enforces both.
package crates
