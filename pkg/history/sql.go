package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/aunovis/secure-sum/pkg/errors"
)

// SQLStore keeps runs in two tables of a SQL database.
type SQLStore struct {
	db      *sql.DB
	backend Backend
}

var _ Store = (*SQLStore)(nil)

func openSQL(ctx context.Context, backend Backend, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "history backend %s needs a dsn", backend)
	}

	var driver string
	switch backend {
	case BackendSQLite:
		driver = "sqlite"
	case BackendPostgres:
		driver = "pgx"
	case BackendMySQL:
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid mysql dsn, expected user:password@tcp(host:port)/dbname")
		}
		driver = "mysql"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s history", backend)
	}
	if backend == BackendSQLite {
		// Avoid "database is locked" between concurrent writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeIO, err, "connect to %s history", backend)
	}

	s := &SQLStore{db: db, backend: backend}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create history tables")
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	textType, floatType, boolType := "TEXT", "REAL", "INTEGER"
	switch s.backend {
	case BackendPostgres:
		floatType, boolType = "DOUBLE PRECISION", "BOOLEAN"
	case BackendMySQL:
		textType, floatType, boolType = "VARCHAR(512)", "DOUBLE", "BOOLEAN"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR(36) PRIMARY KEY,
			started BIGINT NOT NULL,
			finished BIGINT NOT NULL,
			metric %s NOT NULL
		)`, textType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS run_repos (
			run_id VARCHAR(36) NOT NULL,
			position INTEGER NOT NULL,
			repo %s NOT NULL,
			score %s NOT NULL,
			failing %s NOT NULL,
			PRIMARY KEY (run_id, position)
		)`, textType, floatType, boolType),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders for the backend.
func (s *SQLStore) rebind(query string) string {
	if s.backend != BackendPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Record stores run and its repositories in one transaction.
func (s *SQLStore) Record(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "record run")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO runs (id, started, finished, metric) VALUES (?, ?, ?, ?)`),
		run.ID, run.Started.UnixNano(), run.Finished.UnixNano(), run.Metric)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "record run %s", run.ID)
	}

	insert := s.rebind(`INSERT INTO run_repos (run_id, position, repo, score, failing) VALUES (?, ?, ?, ?, ?)`)
	for i, r := range run.Repos {
		if _, err := tx.ExecContext(ctx, insert, run.ID, i, r.Repo, r.Score, r.Failing); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "record repo %s", r.Repo)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "record run %s", run.ID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, started, finished, metric FROM runs ORDER BY started DESC LIMIT ?`), limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list runs")
	}
	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished int64
		if err := rows.Scan(&run.ID, &started, &finished, &run.Metric); err != nil {
			_ = rows.Close()
			return nil, errors.Wrap(errors.ErrCodeIO, err, "list runs")
		}
		run.Started = time.Unix(0, started).UTC()
		run.Finished = time.Unix(0, finished).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list runs")
	}
	_ = rows.Close()

	for i := range runs {
		repos, err := s.repos(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Repos = repos
	}
	return runs, nil
}

func (s *SQLStore) repos(ctx context.Context, runID string) ([]RepoScore, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT repo, score, failing FROM run_repos WHERE run_id = ? ORDER BY position`), runID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list repos of run %s", runID)
	}
	defer rows.Close()

	var repos []RepoScore
	for rows.Next() {
		var r RepoScore
		if err := rows.Scan(&r.Repo, &r.Score, &r.Failing); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "list repos of run %s", runID)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
