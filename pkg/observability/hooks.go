// Package observability provides hooks for metrics about an evaluation run.
//
// Libraries emit events through the registered hooks; by default every hook
// is a no-op, so instrumentation costs nothing unless the CLI installs a
// backend such as [Prometheus].
//
// # Usage
//
// Register hooks at application startup:
//
//	prom := observability.NewPrometheus()
//	observability.SetRunnerHooks(prom)
//	observability.SetCacheHooks(prom)
//	observability.SetHTTPHooks(prom)
//
// Libraries call hooks to emit events:
//
//	observability.Runner().OnTargetStart(ctx, target)
//	// ... run the probes ...
//	observability.Runner().OnTargetComplete(ctx, target, outcome, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// Runner invocation outcomes reported to [RunnerHooks.OnTargetComplete].
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

// Probe cache lookup results reported to [CacheHooks.OnProbeLookup].
const (
	LookupFresh  = "fresh"
	LookupStale  = "stale"
	LookupMiss   = "miss"
	LookupForced = "forced"
)

// =============================================================================
// Runner Hooks
// =============================================================================

// RunnerHooks receives events from the probe runner orchestration.
type RunnerHooks interface {
	OnTargetStart(ctx context.Context, target string)
	OnTargetComplete(ctx context.Context, target, outcome string, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the probe store and the lookup cache.
type CacheHooks interface {
	// OnProbeLookup records whether a stored probe record could be reused.
	OnProbeLookup(ctx context.Context, result string)

	// OnCacheHit records a lookup cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a lookup cache miss.
	OnCacheMiss(ctx context.Context, keyType string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP clients.
type HTTPHooks interface {
	OnResponse(ctx context.Context, method, host string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopRunnerHooks struct{}

func (NoopRunnerHooks) OnTargetStart(context.Context, string)                           {}
func (NoopRunnerHooks) OnTargetComplete(context.Context, string, string, time.Duration) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnProbeLookup(context.Context, string) {}
func (NoopCacheHooks) OnCacheHit(context.Context, string)    {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)   {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	runnerHooks RunnerHooks = NoopRunnerHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetRunnerHooks registers custom runner hooks. Nil is ignored.
func SetRunnerHooks(h RunnerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		runnerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Runner returns the registered runner hooks.
func Runner() RunnerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return runnerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	runnerHooks = NoopRunnerHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
