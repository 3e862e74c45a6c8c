// Package pkg provides the core libraries of secure-sum.
//
// # Overview
//
// secure-sum runs OpenSSF Scorecard probes against repositories and
// packages, weighs the probe findings with a user-defined metric, and
// condenses them into one score per repository. The pkg directory is
// organized as follows:
//
//  1. [target], [ecosystem] - What to evaluate (URLs, packages, manifests)
//  2. [metric] - Probe weights and thresholds loaded from TOML
//  3. [scorecard], [probe] - Running the probe runner and caching its output
//  4. [score], [evaluate] - Scoring and threshold checks
//  5. [history], [cache], [integrations] - Persistence and registry lookups
//
// # Data Flow
//
//	CLI arguments / manifest files
//	         ↓
//	    [target] package (normalize, deduplicate)
//	         ↓
//	    [scorecard] package (dispatch runner, reuse fresh records)
//	         ↓
//	    [score] package (weigh findings against the metric)
//	         ↓
//	    [evaluate] package (error and warn thresholds)
//
// # Quick Start
//
//	m, _ := metric.Load("metric.toml")
//	targets, _ := target.Normalize([]string{"Cargo.toml", "https://github.com/serde-rs/serde"})
//	store, _ := probe.NewStore(dir)
//
//	d := &scorecard.Dispatcher{Runner: scorecard.ExecRunner{Path: "scorecard"}, Store: store}
//	evals, _ := d.Dispatch(ctx, m, targets, false)
//
//	for _, e := range evals {
//	    repo := score.NewRepoData(e.Result, m)
//	    fmt.Printf("%s %.1f\n", repo.Repo, repo.Score)
//	}
//
// # Testing
//
//	go test ./pkg/...
//
// Tests that need a database server are skipped unless
// SECURE_SUM_TEST_POSTGRES, SECURE_SUM_TEST_MYSQL or SECURE_SUM_TEST_MONGO
// hold a connection string.
//
// [target]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/target
// [ecosystem]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/ecosystem
// [metric]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/metric
// [scorecard]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/scorecard
// [probe]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/probe
// [score]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/score
// [evaluate]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/evaluate
// [history]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/history
// [cache]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/aunovis/secure-sum/pkg/integrations
package pkg
