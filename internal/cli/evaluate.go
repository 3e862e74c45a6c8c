package cli

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aunovis/secure-sum/pkg/cache"
	"github.com/aunovis/secure-sum/pkg/ecosystem"
	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/evaluate"
	"github.com/aunovis/secure-sum/pkg/history"
	"github.com/aunovis/secure-sum/pkg/integrations"
	"github.com/aunovis/secure-sum/pkg/integrations/crates"
	"github.com/aunovis/secure-sum/pkg/integrations/github"
	"github.com/aunovis/secure-sum/pkg/metric"
	"github.com/aunovis/secure-sum/pkg/observability"
	"github.com/aunovis/secure-sum/pkg/probe"
	"github.com/aunovis/secure-sum/pkg/score"
	"github.com/aunovis/secure-sum/pkg/scorecard"
	"github.com/aunovis/secure-sum/pkg/target"
)

// evaluateOptions holds the flags of the root command.
type evaluateOptions struct {
	metricFile     string
	rerun          bool
	details        bool
	output         string
	errorThreshold float64
	warnThreshold  float64
	skipTokenCheck bool
}

func (c *CLI) evaluateCommand() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   appName + " [targets...]",
		Args:  cobra.ArbitraryArgs,
		Short: "Rate the security posture of repositories and their dependencies",
		Long: `secure-sum probes repositories with OpenSSF Scorecard and sums the findings up
into one score between 0 and 10 per repository.

Targets are repository URLs or dependency files (Cargo.toml, *.csproj,
package.json, packages.config). Every first-level dependency of a dependency
file is evaluated. Probe records are stored and reused for up to a week.`,
		Example: `  # Evaluate a single repository
  secure-sum https://github.com/aunovis/secure_sum

  # Evaluate the dependencies of a project with a custom metric
  secure-sum --metric metric.toml Cargo.toml package.json

  # Fail below 5, always rerun the probes
  secure-sum --error-threshold 5 --rerun MyProject.csproj`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			var cliErr, cliWarn *float64
			if cmd.Flags().Changed("error-threshold") {
				cliErr = &opts.errorThreshold
			}
			if cmd.Flags().Changed("warn-threshold") {
				cliWarn = &opts.warnThreshold
			}
			return c.runEvaluate(cmd.Context(), args, opts, cliErr, cliWarn)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.metricFile, "metric", "m", "", "metric file (default: built-in metric)")
	f.BoolVarP(&opts.rerun, "rerun", "r", false, "ignore stored probe records and run every target again")
	f.BoolVarP(&opts.details, "details", "d", false, "print the per-probe outcomes of every repository")
	f.StringVarP(&opts.output, "output", "o", outputTable, "report format: table, json or csv")
	f.Float64Var(&opts.errorThreshold, "error-threshold", evaluate.DefaultErrorThreshold, "fail if a repository scores below this value")
	f.Float64Var(&opts.warnThreshold, "warn-threshold", evaluate.DefaultErrorThreshold+evaluate.WarnOffset, "warn if a repository scores below this value")
	f.Duration("timeout", 0, "timeout of a single runner invocation (default from runner.timeout)")
	f.IntP("workers", "j", 0, "concurrent runner invocations (default from runner.workers)")
	f.BoolVar(&opts.skipTokenCheck, "skip-token-check", false, "do not verify GITHUB_TOKEN against the GitHub API")

	// Unchanged flags fall through to env, config file and defaults.
	_ = c.v.BindPFlag("runner.timeout", f.Lookup("timeout"))
	_ = c.v.BindPFlag("runner.workers", f.Lookup("workers"))

	return cmd
}

func (c *CLI) runEvaluate(ctx context.Context, args []string, opts evaluateOptions, cliErr, cliWarn *float64) error {
	logger := loggerFromContext(ctx)
	started := time.Now()

	if err := validateOutput(opts.output); err != nil {
		return err
	}
	m, err := loadMetric(opts.metricFile)
	if err != nil {
		return err
	}
	logger.Debug("Loaded metric", "source", m.Source, "probes", len(m.Probes))
	th := evaluate.Resolve(cliErr, cliWarn, m)

	targets, err := target.Normalize(args)
	if err != nil {
		return err
	}
	logger.Info("Collected targets", "count", len(targets))

	token, err := githubToken()
	if err != nil {
		return err
	}
	gh := github.NewClient(token)
	if !opts.skipTokenCheck {
		if err := checkToken(ctx, logger, gh); err != nil {
			return err
		}
	}

	prom := c.installMetrics()

	lookupCache, err := c.openLookupCache(ctx)
	if err != nil {
		return err
	}
	defer lookupCache.Close()

	store, err := probe.NewStore(c.cfg.probeDir())
	if err != nil {
		return err
	}

	cratesClient := crates.NewClient(lookupCache, c.cfg.Lookup.TTL)
	cratesClient.WithRateLimit(c.cfg.Lookup.Rate)
	d := &scorecard.Dispatcher{
		Runner: &scorecard.ExecRunner{Path: c.cfg.Runner.Path},
		Store:  store,
		Lookups: map[ecosystem.Ecosystem]scorecard.RepoLookup{
			ecosystem.Rust: func(ctx context.Context, name string) (string, error) {
				url, err := cratesClient.RepoURL(ctx, name)
				if err != nil {
					return "", err
				}
				return integrations.NormalizeRepoURL(url), nil
			},
		},
		Workers: c.cfg.Runner.Workers,
		Timeout: c.cfg.Runner.Timeout,
		Logger:  logger,
	}

	prog := newProgress(logger)
	spinner := c.startSpinner(ctx, logger, len(targets))
	if spinner != nil {
		d.Progress = spinner.Progress
	}
	evs, err := d.Dispatch(ctx, m, targets, opts.rerun)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		if errors.Is(err, errors.ErrCodeTimeout) {
			logRateLimit(ctx, logger, gh)
		}
		c.writeMetrics(logger, prom)
		return err
	}
	prog.done("Evaluated " + pluralize(len(evs), "target"))
	for _, ev := range evs {
		if ev.Err != nil {
			logger.Debug("Target could not be evaluated", "target", ev.Target, "code", errors.GetCode(ev.Err))
		}
	}

	repos := scoreAll(evs, m)
	if err := writeReport(c.out, repos, reportOptions{format: opts.output, details: opts.details, thresholds: th}); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write report")
	}

	c.recordHistory(ctx, logger, m, repos, th, started)
	c.writeMetrics(logger, prom)
	return evaluate.Check(repos, th)
}

func loadMetric(path string) (*metric.Metric, error) {
	if path == "" {
		return metric.Default(), nil
	}
	return metric.Load(path)
}

func scoreAll(evs []scorecard.Evaluation, m *metric.Metric) []score.RepoData {
	repos := make([]score.RepoData, len(evs))
	for i, ev := range evs {
		repos[i] = score.NewRepoData(ev.Result, m)
	}
	score.Sort(repos)
	return repos
}

// openLookupCache opens the configured cache of registry responses.
func (c *CLI) openLookupCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Lookup.Backend {
	case lookupNone:
		return cache.NewNullCache(), nil
	case lookupRedis:
		rc, err := cache.NewRedisCache(ctx, c.cfg.Lookup.RedisURL, appName+":")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open redis lookup cache")
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(c.cfg.lookupDir())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "open lookup cache")
		}
		return fc, nil
	}
}

// startSpinner shows dispatch progress on an interactive stderr.
func (c *CLI) startSpinner(ctx context.Context, logger *log.Logger, total int) *Spinner {
	if logger.GetLevel() > log.InfoLevel || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	s := newSpinnerWithContext(ctx, "Probing "+pluralize(total, "target"))
	s.Start()
	return s
}

// installMetrics registers Prometheus hooks when a metrics file is configured.
func (c *CLI) installMetrics() *observability.Prometheus {
	if c.cfg.MetricsFile == "" {
		return nil
	}
	prom := observability.NewPrometheus()
	observability.SetRunnerHooks(prom)
	observability.SetCacheHooks(prom)
	observability.SetHTTPHooks(prom)
	return prom
}

func (c *CLI) writeMetrics(logger *log.Logger, prom *observability.Prometheus) {
	if prom == nil {
		return
	}
	if err := prom.WriteTextfile(c.cfg.MetricsFile); err != nil {
		logger.Warn("Could not write metrics", "path", c.cfg.MetricsFile, "err", err)
		return
	}
	logger.Debug("Wrote metrics", "path", c.cfg.MetricsFile)
}

// recordHistory stores the run. Failures are logged, the report stands.
func (c *CLI) recordHistory(ctx context.Context, logger *log.Logger, m *metric.Metric, repos []score.RepoData, th evaluate.Thresholds, started time.Time) {
	if c.cfg.History.Backend == string(history.BackendNone) {
		return
	}
	hs, err := history.Open(ctx, history.Backend(c.cfg.History.Backend), c.cfg.historyDSN())
	if err != nil {
		logger.Warn("Could not open history", "err", err)
		return
	}
	defer hs.Close()

	run := history.NewRun(m.Source, started)
	run.Finished = time.Now().UTC()
	for _, r := range repos {
		run.Repos = append(run.Repos, history.RepoScore{Repo: r.Repo, Score: r.Score, Failing: r.Score < th.Error})
	}
	if err := hs.Record(ctx, run); err != nil {
		logger.Warn("Could not record run", "err", err)
		return
	}
	logger.Debug("Recorded run", "id", run.ID)
}
