package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ppiankov/politikcred/internal/ledger"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/spf13/cobra"
)

var (
	historyJSON   bool
	historyVerify bool
	disputeUndo   bool
	adjustSources []string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <official-id>",
	Short: "Show an official's credibility history",
	Long: `History prints every credibility change of an official in order, with
the verification and sources behind it. --verify checks that the chain is
unbroken: each entry starts from the previous entry's score, sequences have
no gaps and every score stays within bounds.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

// disputeCmd represents the dispute command
var disputeCmd = &cobra.Command{
	Use:   "dispute <verification-id>",
	Short: "Flag a verification as disputed",
	Long: `Dispute flags a verification for manual review and marks its promise as
disputed. The credibility history is append-only and is not changed; use
"adjust" to record a correction. --undo clears the flag.`,
	Args: cobra.ExactArgs(1),
	RunE: runDispute,
}

// adjustCmd represents the adjust command
var adjustCmd = &cobra.Command{
	Use:   "adjust <official-id> <delta> <description>",
	Short: "Record a manual credibility adjustment",
	Long: `Adjust appends a manual_adjustment entry to an official's credibility
history. The description and at least one --source are required so the
change stays evidenced.

Example:
  politikcred adjust <id> --source https://example.org/review -- -3 "Verification v-12 overturned on review"`,
	Args: cobra.ExactArgs(3),
	RunE: runAdjust,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(disputeCmd)
	rootCmd.AddCommand(adjustCmd)

	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print entries as JSON")
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "check chain integrity and fail if broken")
	disputeCmd.Flags().BoolVar(&disputeUndo, "undo", false, "clear the dispute flag")
	adjustCmd.Flags().StringArrayVar(&adjustSources, "source", nil, "evidence URL (repeatable)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	official, err := a.store.GetOfficial(ctx, args[0])
	if err != nil {
		return err
	}
	entries, err := a.store.ListHistory(ctx, official.ID)
	if err != nil {
		return err
	}

	if historyJSON {
		if err := writeJSON(cmd.OutOrStdout(), entries); err != nil {
			return err
		}
	} else {
		printHistory(official, entries)
	}

	if !historyVerify {
		return nil
	}
	if err := ledger.VerifyChain(entries, a.cfg.Credibility.Min, a.cfg.Credibility.Max); err != nil {
		printFail("Chain broken: %v", err)
		return err
	}
	printOK("Chain intact (%d entries)", len(entries))
	return nil
}

func printHistory(o *model.Official, entries []model.HistoryEntry) {
	printBanner(fmt.Sprintf("%s (%s): %.2f [%s]", o.Name, o.Position, o.CredibilityScore, model.CredibilityTier(o.CredibilityScore)))
	tw := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tDATE\tREASON\tDELTA\tSCORE\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%+.2f\t%.2f\t%s\n",
			e.Sequence, e.CreatedAt.Format("2006-01-02"), e.Reason, e.Delta, e.NewScore, truncate(e.Description, 80))
	}
	_ = tw.Flush()
	fmt.Fprintln(os.Stderr)
}

func runDispute(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SetVerificationDisputed(ctx, args[0], !disputeUndo); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("verification %s not found", args[0])
		}
		return err
	}
	if disputeUndo {
		printOK("Dispute cleared on %s", args[0])
	} else {
		printOK("Verification %s flagged as disputed", args[0])
		printWarn("The credibility history is unchanged; record any correction with 'politikcred adjust'")
	}
	return nil
}

func runAdjust(cmd *cobra.Command, args []string) error {
	if len(adjustSources) == 0 {
		return errors.New("a manual adjustment needs at least one --source")
	}
	delta, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("delta %q: %w", args[1], err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.store.GetOfficial(ctx, args[0]); err != nil {
		return err
	}
	entry, err := ledger.New(a.cfg.Credibility, a.store).Adjust(ctx, args[0], delta, args[2], adjustSources)
	if err != nil {
		return err
	}
	printOK("Entry %d: %.2f -> %.2f", entry.Sequence, entry.PreviousScore, entry.NewScore)
	return nil
}
