package scorecard

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/aunovis/secure-sum/pkg/ecosystem"
	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/metric"
	"github.com/aunovis/secure-sum/pkg/observability"
	"github.com/aunovis/secure-sum/pkg/probe"
	"github.com/aunovis/secure-sum/pkg/target"
)

// Evaluation is the probe record of one target.
type Evaluation struct {
	Target target.SingleTarget
	Result *probe.Result
	// Reused is true when the stored record was fresh enough.
	Reused bool
	// Err is the per-target failure behind an error record produced by
	// this dispatch, coded RESOLUTION_FAILED or RUNNER_FAILED.
	Err error
}

// Dispatcher evaluates targets with the probe runner.
type Dispatcher struct {
	Runner  Runner
	Store   *probe.Store
	Lookups map[ecosystem.Ecosystem]RepoLookup

	// Workers bounds concurrent runner invocations. Zero means GOMAXPROCS.
	Workers int
	// Timeout bounds each invocation. Zero means no limit.
	Timeout time.Duration

	Logger *log.Logger
	// Progress, if set, is called after each finished target. It may be
	// called concurrently.
	Progress func(done, total int)

	now func() time.Time
}

// Dispatch returns one evaluation per target, in target order. With force
// set, stored records are ignored and every target is run again.
func (d *Dispatcher) Dispatch(ctx context.Context, m *metric.Metric, targets []target.SingleTarget, force bool) ([]Evaluation, error) {
	if m == nil || len(m.Probes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidMetric, "Metric needs to contain at least one probe")
	}

	workers := d.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Evaluation, len(targets))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range targets {
		g.Go(func() error {
			ev, err := d.evaluate(gctx, m, t, force)
			if err != nil {
				return err
			}
			results[i] = ev
			if d.Progress != nil {
				d.Progress(int(done.Add(1)), len(targets))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Dispatcher) evaluate(ctx context.Context, m *metric.Metric, t target.SingleTarget, force bool) (Evaluation, error) {
	logger := d.logger().With("target", t)
	hooks := observability.Cache()

	if force {
		hooks.OnProbeLookup(ctx, observability.LookupForced)
	} else {
		stored, err := d.Store.Load(t)
		if err != nil {
			return Evaluation{}, err
		}
		switch {
		case stored == nil:
			hooks.OnProbeLookup(ctx, observability.LookupMiss)
		case !probe.NeedsRerun(stored, m, d.clock()):
			hooks.OnProbeLookup(ctx, observability.LookupFresh)
			logger.Debug("Reusing stored probe record", "date", stored.Date.Format(time.DateOnly))
			return Evaluation{Target: t, Result: stored, Reused: true}, nil
		default:
			hooks.OnProbeLookup(ctx, observability.LookupStale)
		}
	}

	r, failure, err := d.run(ctx, m, t, logger)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{Target: t, Result: r}
	if failure != nil {
		ev.Err = failure
	}
	return ev, nil
}

// run invokes the runner for t. A per-target failure is stored as an error
// record and returned as failure; err is reserved for run-aborting errors.
func (d *Dispatcher) run(ctx context.Context, m *metric.Metric, t target.SingleTarget, logger *log.Logger) (r *probe.Result, failure *errors.Error, err error) {
	hooks := observability.Runner()
	hooks.OnTargetStart(ctx, t.String())
	start := time.Now()
	complete := func(outcome string) {
		hooks.OnTargetComplete(ctx, t.String(), outcome, time.Since(start))
	}

	selector, err := d.selector(ctx, t)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		logger.Warn("Could not resolve package to a repository", "err", err)
		complete(observability.OutcomeFailed)
		return d.fail(t, errors.Wrap(errors.ErrCodeResolution, err, "Could not resolve %s to a repository", t))
	}

	runCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	args := Args(selector, m.ProbeNames())
	logger.Info("Running probes", "args", strings.Join(args, " "))
	stdout, stderr, err := d.Runner.Run(runCtx, args)

	switch {
	case err != nil && ctx.Err() != nil:
		return nil, nil, ctx.Err()
	case err != nil && stderrors.Is(runCtx.Err(), context.DeadlineExceeded):
		complete(observability.OutcomeTimeout)
		logger.Error("Runner timed out", "timeout", d.Timeout)
		return nil, nil, errors.Timeout(err)
	case isStartFailure(err):
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "unable to execute the probe runner")
	}

	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		logger.Warn("Runner reported an error", "stderr", msg)
		complete(observability.OutcomeFailed)
		return d.fail(t, errors.New(errors.ErrCodeRunner, "%s", msg))
	}
	if err != nil {
		logger.Warn("Runner failed", "err", err)
		complete(observability.OutcomeFailed)
		return d.fail(t, errors.Wrap(errors.ErrCodeRunner, err, "Runner failed"))
	}

	r, err = probe.Decode(bytes.TrimSpace(stdout))
	if err != nil {
		logger.Warn("Runner output is not a probe record", "err", err)
		complete(observability.OutcomeFailed)
		return d.fail(t, errors.Wrap(errors.ErrCodeRunner, err, "Could not parse runner output"))
	}
	if err := d.Store.Save(t, stdout); err != nil {
		return nil, nil, err
	}
	complete(observability.OutcomeSuccess)
	logger.Debug("Probes finished", "findings", len(r.Findings), "duration", time.Since(start).Round(time.Millisecond))
	return r, nil, nil
}

// fail stores an error record for t carrying the user message of failure.
func (d *Dispatcher) fail(t target.SingleTarget, failure *errors.Error) (*probe.Result, *errors.Error, error) {
	name := t.String()
	if t.IsURL() {
		name = t.Identity()
	}
	r := probe.ErrorResult(name, errors.UserMessage(failure), d.clock())
	if err := d.Store.SaveResult(t, r); err != nil {
		return nil, nil, err
	}
	return r, failure, nil
}

func isStartFailure(err error) bool {
	var execErr *exec.Error
	return stderrors.As(err, &execErr) || stderrors.Is(err, fs.ErrNotExist) || stderrors.Is(err, fs.ErrPermission)
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

func (d *Dispatcher) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}
