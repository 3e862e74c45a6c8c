// Package history records completed evaluation runs.
//
// History is optional. Every backend implements [Store]:
//
//   - sqlite: a local database file (pure Go driver)
//   - postgres, mysql: a shared SQL server
//   - mongo: a MongoDB collection
//   - none: records nothing
//
// Use [Open] to select a backend by name.
package history

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aunovis/secure-sum/pkg/errors"
)

// Backend names a history store implementation.
type Backend string

const (
	BackendNone     Backend = "none"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendMongo    Backend = "mongo"
)

// Backends lists the accepted backend names.
var Backends = []Backend{BackendNone, BackendSQLite, BackendPostgres, BackendMySQL, BackendMongo}

// Run is one completed evaluation.
type Run struct {
	ID       string      `json:"id"`
	Started  time.Time   `json:"started"`
	Finished time.Time   `json:"finished"`
	Metric   string      `json:"metric"`
	Repos    []RepoScore `json:"repos"`
}

// RepoScore is the outcome of one repository in a run.
type RepoScore struct {
	Repo    string  `json:"repo"`
	Score   float64 `json:"score"`
	Failing bool    `json:"failing"`
}

// NewRun starts a run with a fresh id.
func NewRun(metricSource string, started time.Time) *Run {
	return &Run{ID: uuid.NewString(), Started: started.UTC(), Metric: metricSource}
}

// Failing returns the number of failing repositories.
func (r *Run) Failing() int {
	n := 0
	for _, s := range r.Repos {
		if s.Failing {
			n++
		}
	}
	return n
}

// Store persists runs.
type Store interface {
	Record(ctx context.Context, run *Run) error
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// Open connects to the named backend. dsn is a file path for sqlite, a
// connection string for the servers and ignored for none.
func Open(ctx context.Context, backend Backend, dsn string) (Store, error) {
	switch Backend(strings.ToLower(string(backend))) {
	case BackendNone, "":
		return nopStore{}, nil
	case BackendSQLite:
		return openSQL(ctx, BackendSQLite, dsn)
	case BackendPostgres, "postgresql":
		return openSQL(ctx, BackendPostgres, dsn)
	case BackendMySQL:
		return openSQL(ctx, BackendMySQL, dsn)
	case BackendMongo, "mongodb":
		return openMongo(ctx, dsn)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported history backend %q (want one of %v)", backend, Backends)
	}
}

type nopStore struct{}

func (nopStore) Record(context.Context, *Run) error          { return nil }
func (nopStore) Recent(context.Context, int) ([]Run, error) { return nil, nil }
func (nopStore) Close() error                               { return nil }
