package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/pteroai-go/internal/infrastructure/history"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded decisions",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
		newHistoryStatsCommand(container),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent decisions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.Context(), cmd.OutOrStdout(), container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show (0 for all)")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			if err := container.HistoryStore.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			return nil
		},
	}
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			n, err := history.ExportJSONL(cmd.Context(), container.HistoryStore, args[0])
			if err != nil {
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, args[0])
			return nil
		},
	}
}

// newHistoryStatsCommand creates the 'history stats' subcommand
func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show security level distribution and most targeted files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryStats(cmd.Context(), cmd.OutOrStdout(), container, top)
		},
	}

	cmd.Flags().IntVar(&top, "top", DefaultStatsTop, "How many target files to list")
	return cmd
}

// listHistoryEntries lists recent history entries
func listHistoryEntries(ctx context.Context, out io.Writer, container *app.Container, limit int) error {
	if container.HistoryStore == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	entries, err := container.HistoryStore.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	now := time.Now()
	for _, entry := range entries {
		helpers.RenderHistoryLine(out, entry, now)
	}
	return nil
}

// showHistoryStats displays aggregate statistics over all recorded decisions
func showHistoryStats(ctx context.Context, out io.Writer, container *app.Container, top int) error {
	if container.HistoryStore == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	entries, err := container.HistoryStore.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve history for analysis: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	stats := helpers.AnalyzeHistory(entries, top)
	fmt.Fprintf(out, "Decisions: %d\nInvalid: %d\nDegraded: %d\nAverage confidence: %.0f%%\n",
		stats.Total, stats.Invalid, stats.Degraded, stats.AvgConfidence*100)

	fmt.Fprintln(out, "Security levels:")
	levels := domain.SecurityLevels()
	sort.Slice(levels, func(i, j int) bool { return levels[i] > levels[j] })
	for _, level := range levels {
		if count := stats.ByLevel[level]; count > 0 {
			fmt.Fprintf(out, "  %s %d\n", helpers.Level(level), count)
		}
	}

	if len(stats.TopTargets) > 0 {
		fmt.Fprintln(out, "Most targeted files:")
		for _, stat := range stats.TopTargets {
			fmt.Fprintf(out, "  %s (%d)\n", stat.Label, stat.Count)
		}
	}
	return nil
}
