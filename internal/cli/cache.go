package cli

import (
	"github.com/spf13/cobra"

	"github.com/aunovis/secure-sum/pkg/cache"
	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/probe"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage stored probe records and registry lookups",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var probesOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored probe records and cached registry responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := probe.NewStore(c.cfg.probeDir())
			if err != nil {
				return err
			}
			count, err := store.Clear()
			if err != nil {
				return err
			}
			printSuccess(c.out, "Cleared %s", pluralize(count, "probe record"))
			printDetail(c.out, "Directory: %s", store.Dir())

			if probesOnly {
				return nil
			}
			lookup, err := c.openLookupCache(cmd.Context())
			if err != nil {
				return err
			}
			defer lookup.Close()
			clearer, ok := lookup.(cache.Clearer)
			if !ok {
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "clear lookup cache")
			}
			printSuccess(c.out, "Cleared the %s lookup cache", c.cfg.Lookup.Backend)
			return nil
		},
	}
	cmd.Flags().BoolVar(&probesOnly, "probes-only", false, "keep cached registry responses")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue(c.out, "data", c.cfg.DataDir)
			printKeyValue(c.out, "probes", c.cfg.probeDir())
			if c.cfg.Lookup.Backend == lookupFile {
				printKeyValue(c.out, "lookup", c.cfg.lookupDir())
			}
			return nil
		},
	}
}
