package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aunovis/secure-sum/pkg/buildinfo"
	"github.com/aunovis/secure-sum/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "secure-sum"

	// dataDirName is the directory below the XDG data home.
	dataDirName = "aunovis_secure_sum"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer
	v   *viper.Viper
	cfg *Config
}

// New creates a new CLI instance. Log output goes to w, reports to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		v:      newViper(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects reports and listings.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself evaluates targets.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose    bool
		quiet      bool
		configFile string
	)

	root := c.evaluateCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./secure-sum.yaml or $XDG_CONFIG_HOME/secure-sum/)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if quiet && verbose {
			return errors.New(errors.ErrCodeInvalidInput, "--quiet and --verbose can not be combined")
		}
		level := LogInfo
		switch {
		case verbose:
			level = LogDebug
		case quiet:
			level = LogError
		}
		c.SetLogLevel(level)
		log.SetDefault(c.Logger)
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))

		loadDotenv(c.Logger)
		cfg, err := loadConfig(c.v, configFile)
		if err != nil {
			return err
		}
		c.cfg = cfg
		return nil
	}

	root.AddCommand(c.probesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.historyCommand())

	return root
}
