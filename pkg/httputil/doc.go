// Package httputil provides retry helpers for registry clients.
//
// Transient failures (connection errors, 5xx responses, 429 rate limits) are
// wrapped in [RetryableError] by the caller. [Retry] re-runs the operation
// with exponential backoff for those errors only, honoring a server supplied
// Retry-After delay when one is present:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Get(ctx, url, &v)
//	})
package httputil
