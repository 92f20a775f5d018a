package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/politikcred/internal/engine"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/worker"
	"github.com/spf13/cobra"
)

var (
	matchOfficial string
	matchFile     string
	matchTimeout  time.Duration
	matchJSON     bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match pending promises to recorded actions",
	Long: `Match pairs every pending promise with the most similar recorded action
of the same official. Keyword similarity is always available; when an
embedding provider is configured it is tried first and the keyword path
takes over if the provider fails.

Accepted matches are written as verifications (kept, broken or partial),
the promise becomes verified and the credibility history gets one entry
per verification. Re-running is safe: existing pairs are never rewritten.

Example:
  politikcred match
  politikcred match --official <id> --json
  politikcred match --officials-file deputes.txt`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute consistency scores",
	Long: `Score recomputes the consistency score of one or every official from
their verifications and recorded actions: kept/broken/partial counts,
attendance, legislative activity and the weighted composite. Every
component is reported with its formula and inputs.

Example:
  politikcred score
  politikcred score --official <id>
  politikcred score --officials-file deputes.txt --json`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match every pending promise, then recompute every score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), matchTimeout)
		defer cancel()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		return runPipeline(ctx, a)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)

	matchCmd.Flags().StringVar(&matchOfficial, "official", "", "only match this official")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "print the run summary as JSON")
	scoreCmd.Flags().StringVar(&matchOfficial, "official", "", "only score this official")
	scoreCmd.Flags().BoolVar(&matchJSON, "json", false, "print scores as JSON")
	for _, c := range []*cobra.Command{matchCmd, scoreCmd} {
		c.Flags().StringVar(&matchFile, "officials-file", "", "file with one official id per line (# comments allowed)")
	}
	for _, c := range []*cobra.Command{matchCmd, scoreCmd, runCmd} {
		c.Flags().DurationVar(&matchTimeout, "timeout", time.Hour, "overall timeout")
	}
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), matchTimeout)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	eng := a.engine()

	ids, err := selectedOfficials()
	if err != nil {
		return err
	}

	var summary model.MatchSummary
	if ids == nil {
		summary, err = eng.MatchAll(ctx)
		if err != nil {
			return err
		}
	} else {
		start := time.Now()
		for _, id := range ids {
			s, err := eng.MatchOfficial(ctx, id)
			if err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, model.ItemError{OfficialID: id, Stage: engine.StageList, Err: err.Error()})
				continue
			}
			summary.Merge(s)
		}
		summary.Duration = time.Since(start)
	}

	if matchJSON {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	printBanner("PolitikCred Match")
	printMatchSummary(summary)
	return nil
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), matchTimeout)
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	eng := a.engine()

	ids, err := selectedOfficials()
	if err != nil {
		return err
	}

	if len(ids) > 1 {
		var scores []*model.ConsistencyScore
		for _, id := range ids {
			score, err := eng.CalculateScore(ctx, id)
			if err != nil {
				printFail("%s: %v", id, err)
				continue
			}
			scores = append(scores, score)
		}
		if matchJSON {
			return writeJSON(cmd.OutOrStdout(), scores)
		}
		for _, score := range scores {
			printScore(score)
		}
		return nil
	}

	if ids == nil {
		summary, err := eng.CalculateAllScores(ctx)
		if err != nil {
			return err
		}
		if matchJSON {
			return writeJSON(cmd.OutOrStdout(), summary)
		}
		printBanner("PolitikCred Scores")
		printScoreSummary(summary)
		return nil
	}

	score, err := eng.CalculateScore(ctx, ids[0])
	if err != nil {
		return err
	}
	if matchJSON {
		return writeJSON(cmd.OutOrStdout(), score)
	}
	printScore(score)
	return nil
}

// selectedOfficials returns the officials named by --official or
// --officials-file, or nil for every official
func selectedOfficials() ([]string, error) {
	switch {
	case matchOfficial != "" && matchFile != "":
		return nil, errors.New("use either --official or --officials-file")
	case matchOfficial != "":
		return []string{matchOfficial}, nil
	case matchFile != "":
		ids, err := worker.ReadLines(matchFile)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%s lists no officials", matchFile)
		}
		return ids, nil
	}
	return nil, nil
}

func printScore(s *model.ConsistencyScore) {
	printBanner(fmt.Sprintf("Consistency: %s", s.OfficialID))
	fmt.Fprintf(os.Stderr, "  Kept / Broken / Partial:  %d / %d / %d\n", s.Kept, s.Broken, s.Partial)
	fmt.Fprintf(os.Stderr, "  Overall:                  %.1f\n", s.OverallScore)
	fmt.Fprintf(os.Stderr, "  Attendance:               %.0f%%\n", s.AttendanceRate*100)
	fmt.Fprintf(os.Stderr, "  Legislative activity:     %.0f%%\n", s.LegislativeActivity*100)
	fmt.Fprintf(os.Stderr, "  Data quality:             %.0f%%\n", s.DataQuality*100)
	fmt.Fprintf(os.Stderr, "  Composite:                %.1f\n\n", s.CompositeScore)
	for _, sig := range s.Signals {
		fmt.Fprintf(os.Stderr, "  [%s] %s\n", sig.Severity, sig.Description)
	}
	fmt.Fprintln(os.Stderr)
}

// runPipeline matches then scores. Per-item failures are reported in the
// summaries; only a run that cannot start returns an error.
func runPipeline(ctx context.Context, a *app) error {
	eng := a.engine()

	printBanner("PolitikCred Run")
	summary, err := eng.MatchAll(ctx)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}
	printMatchSummary(summary)

	scores, err := eng.CalculateAllScores(ctx)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	printScoreSummary(scores)

	if summary.Failed == 0 && scores.Failed == 0 {
		printOK("Run complete")
	} else {
		printWarn("Run complete with %d match and %d score failures", summary.Failed, scores.Failed)
	}
	return nil
}
