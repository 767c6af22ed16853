package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/helpers"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(container *app.Container) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the context cache",
	}

	cacheCmd.AddCommand(
		newCacheListCommand(container),
		newCacheClearCommand(container),
	)

	return cacheCmd
}

// newCacheListCommand creates the 'cache list' subcommand
func newCacheListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCacheEntries(cmd.OutOrStdout(), container)
		},
	}
}

// newCacheClearCommand creates the 'cache clear' subcommand
func newCacheClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached decision and system snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Cache == nil {
				return errors.New(ErrCacheStoreUnavailable)
			}
			if err := container.Cache.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", container.Cache.Path())
			return nil
		},
	}
}

// listCacheEntries lists all cache entries
func listCacheEntries(out io.Writer, container *app.Container) error {
	if container.Cache == nil {
		return errors.New(ErrCacheStoreUnavailable)
	}

	entries := container.Cache.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoCachedEntries)
		return nil
	}

	now := time.Now()
	var total int
	for _, entry := range entries {
		helpers.RenderCacheEntry(out, entry, now)
		total += entry.Size
	}
	fmt.Fprintf(out, "%d entries, %s in %s\n", len(entries), humanize.Bytes(uint64(total)), container.Cache.Path())
	return nil
}
