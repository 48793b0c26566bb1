package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

var recentsCmd = &cobra.Command{
	Use:   "recents",
	Short: "List the most recent arrivals",
	Long:  `List the most recently recorded items, newest first, as stored by the last reconcile.`,
	Args:  cobra.NoArgs,
	RunE:  runRecents,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show every recorded item grouped by day",
	Long: `Show the stored history: every item grouped by the day it was first
seen, newest day first.

Use --format json to print the document exactly as it is stored.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var updatedTodayCmd = &cobra.Command{
	Use:   "updated-today",
	Short: "Report whether anything arrived today",
	Long: `Report whether the newest day in the stored history is today (UTC).
Exits with an error status when nothing arrived today and --exit-code is set.`,
	Args: cobra.NoArgs,
	RunE: runUpdatedToday,
}

// errNotUpdatedToday is returned by updated-today --exit-code.
var errNotUpdatedToday = errors.New("no new arrivals today")

func init() {
	recentsCmd.Flags().StringP("format", "f", formatText, "output format (text, json, yaml)")
	historyCmd.Flags().StringP("format", "f", formatText, "output format (text, json, yaml)")
	historyCmd.Flags().IntP("days", "d", 0, "only show the newest N days (0 = all)")
	updatedTodayCmd.Flags().Bool("exit-code", false, "exit with status 1 when nothing arrived today")

	rootCmd.AddCommand(recentsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(updatedTodayCmd)
}

func runRecents(cmd *cobra.Command, _ []string) error {
	if err := requireHistory(); err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if !validFormat(format) {
		return fmt.Errorf("%w: output format %q", domain.ErrInvalidInput, format)
	}

	recents, err := historyService.Recents(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read recents: %w", err)
	}

	out := cmd.OutOrStdout()
	if format != formatText {
		return writeStructured(out, format, toItemViews(recents))
	}
	fmt.Fprintln(out, "Recent arrivals:")
	writeItems(out, recents)
	return nil
}

// batchView is the YAML form of one dated batch.
type batchView struct {
	Date  string     `yaml:"date"`
	Items []itemView `yaml:"items"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if err := requireHistory(); err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if !validFormat(format) {
		return fmt.Errorf("%w: output format %q", domain.ErrInvalidInput, format)
	}
	days, _ := cmd.Flags().GetInt("days")
	if days < 0 {
		return fmt.Errorf("%w: --days must not be negative", domain.ErrInvalidInput)
	}

	history, err := historyService.History(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if days > 0 && days < len(history.Batches) {
		trimmed := history.Clone()
		trimmed.Batches = trimmed.Batches[:days]
		history = &trimmed
	}

	out := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		data, err := history.Encode()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	case formatYAML:
		batches := make([]batchView, len(history.Batches))
		for i, batch := range history.Batches {
			batches[i] = batchView{Date: batch.Date, Items: toItemViews(batch.Items)}
		}
		return writeStructured(out, format, map[string]any{
			"batches": batches,
			"recents": toItemViews(history.Recents),
		})
	}

	if len(history.Batches) == 0 {
		fmt.Fprintln(out, "No items recorded yet.")
		return nil
	}
	for i, batch := range history.Batches {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d)\n", formatBatchDate(batch.Date), len(batch.Items))
		writeItems(out, batch.Items)
	}
	fmt.Fprintf(out, "\n%d item(s) over %d day(s)\n", history.ItemCount(), len(history.Batches))
	return nil
}

func runUpdatedToday(cmd *cobra.Command, _ []string) error {
	if err := requireHistory(); err != nil {
		return err
	}

	updated, err := historyService.UpdatedToday(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	snap := domain.Snapshot{UpdateToday: updated}
	fmt.Fprintln(cmd.OutOrStdout(), snap.Headline())

	exitCode, _ := cmd.Flags().GetBool("exit-code")
	if exitCode && !updated {
		return errNotUpdatedToday
	}
	return nil
}

// formatBatchDate renders YYYYMMDD as YYYY-MM-DD, leaving other values as is.
func formatBatchDate(d string) string {
	t, err := domain.ParseBatchDate(d)
	if err != nil {
		return d
	}
	return t.Format("2006-01-02")
}
