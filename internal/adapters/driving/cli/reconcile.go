package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check the catalog for new arrivals",
	Long: `Fetch the catalog and the stored history, record every item that has
not been seen before under today's date, save the history and print
today's status with the most recent arrivals.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringP("format", "f", formatText, "output format (text, json, yaml)")
	rootCmd.AddCommand(reconcileCmd)
}

// cycleView is the structured form of a cycle result.
type cycleView struct {
	Date        string     `json:"date" yaml:"date"`
	Headline    string     `json:"headline" yaml:"headline"`
	UpdateToday bool       `json:"updateToday" yaml:"update_today"`
	Written     bool       `json:"written" yaml:"written"`
	NewItems    []itemView `json:"newItems" yaml:"new_items"`
	Recents     []itemView `json:"recents" yaml:"recents"`
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if err := requireReconciler(); err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("getting format flag: %w", err)
	}
	if !validFormat(format) {
		return fmt.Errorf("%w: output format %q", domain.ErrInvalidInput, format)
	}

	out := cmd.OutOrStdout()
	var observer driving.CycleObserver = cycleObserver
	if format == formatText {
		observer = &progressObserver{w: out, next: cycleObserver}
	}

	result, err := reconciler.Reconcile(cmd.Context(), observer)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	snap := domain.Snapshot{UpdateToday: result.UpdateToday, Recents: result.Recents}
	if format != formatText {
		return writeStructured(out, format, cycleView{
			Date:        result.Date,
			Headline:    snap.Headline(),
			UpdateToday: result.UpdateToday,
			Written:     result.Written,
			NewItems:    toItemViews(result.NewItems),
			Recents:     toItemViews(result.Recents),
		})
	}

	fmt.Fprintln(out, snap.Headline())
	if len(result.NewItems) > 0 {
		fmt.Fprintf(out, "%d new item(s) recorded for %s\n", len(result.NewItems), result.Date)
	}
	if !result.Written {
		fmt.Fprintln(out, "History unchanged, write skipped")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Recent arrivals:")
	writeItems(out, result.Recents)
	return nil
}

// progressObserver prints cycle progress and forwards events to next.
type progressObserver struct {
	w    io.Writer
	next driving.CycleObserver
}

func (p *progressObserver) OnStart() {
	fmt.Fprintf(p.w, "%s...\n", domain.HeadlineChecking)
	if p.next != nil {
		p.next.OnStart()
	}
}

func (p *progressObserver) OnFinish() {
	if p.next != nil {
		p.next.OnFinish()
	}
}

func (p *progressObserver) OnTodayUpdate(updateToday bool) {
	if p.next != nil {
		p.next.OnTodayUpdate(updateToday)
	}
}

func (p *progressObserver) OnDatabaseUpdate(recents []domain.RecentItem) {
	if p.next != nil {
		p.next.OnDatabaseUpdate(recents)
	}
}
