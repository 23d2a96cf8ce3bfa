package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"treasurepicker/internal/gallerycache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the decoded image cache",
	}
	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

// openCache opens the configured store. The returned close function releases
// the store and the log file.
func (c *commandContext) openCache(cmd *cobra.Command) (*gallerycache.Store, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := c.logger(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := gallerycache.Open(cmd.Context(), cfg.CachePath(), logger)
	if err != nil {
		_ = closeLog()
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return store, func() {
		_ = store.Close()
		_ = closeLog()
	}, nil
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache location and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, closeCache, err := ctx.openCache(cmd)
			if err != nil {
				return err
			}
			defer closeCache()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache path: %s\n", stats.Path)
			fmt.Fprintf(out, "Enabled: %s\n", yesNo(cfg.Cache.Enabled))
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Stored pixels: %s (%s)\n", humanize.Comma(stats.Pixels), humanize.IBytes(uint64(stats.Bytes)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached buffer",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeCache, err := ctx.openCache(cmd)
			if err != nil {
				return err
			}
			defer closeCache()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached image(s)\n", removed)
			return nil
		},
	}
}
