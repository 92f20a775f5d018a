package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/politikcred/internal/dataset"
	"github.com/ppiankov/politikcred/internal/demo"
	"github.com/spf13/cobra"
)

var (
	importTimeout time.Duration
	importJSON    bool

	demoSeed      int64
	demoOfficials int
	demoPromises  int
	demoActions   int
	demoImport    bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <dataset.json|->",
	Short: "Import officials, promises and actions from a dataset file",
	Long: `Import loads a JSON dataset produced by the collection layer:

  {"provenance": "...", "officials": [...], "promises": [...], "actions": [...]}

Officials are trimmed, deduplicated by first and last name and written in
batches (import.batch_size) with a row-by-row fallback when a batch fails.
Promises without a confidence go through the classifier; non-promises are
skipped. Vote labels such as "Pour", "Contre" or "Non votant" are mapped to
canonical positions. Re-importing the same file is safe.

Example:
  politikcred import data/assemblee-2024.json
  politikcred import - < dataset.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo <out.json>",
	Short: "Write a synthetic dataset with fictional officials",
	Long: `Demo writes a synthetic dataset for trying the pipeline. Officials are
fictional and every record carries provenance "synthetic". Only raw
promises and actions are generated: verifications and scores come from
the real matcher when the dataset is imported and matched.

Example:
  politikcred demo demo.json
  politikcred demo demo.json --import --store-dsn demo.db && politikcred run --store-dsn demo.db`,
	Args: cobra.ExactArgs(1),
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(demoCmd)

	importCmd.Flags().DurationVar(&importTimeout, "timeout", 30*time.Minute, "overall timeout")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print the import report as JSON")

	defaults := demo.DefaultOptions()
	demoCmd.Flags().Int64Var(&demoSeed, "seed", defaults.Seed, "random seed")
	demoCmd.Flags().IntVar(&demoOfficials, "officials", defaults.Officials, "number of officials")
	demoCmd.Flags().IntVar(&demoPromises, "promises", defaults.PromisesPerOfficial, "promises per official")
	demoCmd.Flags().IntVar(&demoActions, "actions", defaults.ActionsPerOfficial, "actions per official")
	demoCmd.Flags().BoolVar(&demoImport, "import", false, "also import the dataset into the configured store")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
	defer cancel()

	ds, err := dataset.LoadFile(args[0])
	if err != nil {
		return err
	}
	return importDataset(ctx, cmd, ds, args[0])
}

func importDataset(ctx context.Context, cmd *cobra.Command, ds *dataset.Dataset, name string) error {
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	printBanner("PolitikCred Import")
	fmt.Fprintf(os.Stderr, "  Input:       %s\n", name)
	if ds.Provenance != "" {
		fmt.Fprintf(os.Stderr, "  Provenance:  %s\n", ds.Provenance)
	}
	fmt.Fprintf(os.Stderr, "  Records:     %d officials, %d promises, %d actions\n\n",
		len(ds.Officials), len(ds.Promises), len(ds.Actions))

	im := dataset.NewImporter(a.store, a.rules, a.cfg.Import, a.cfg.Credibility.Baseline)
	report, err := im.Import(ctx, ds)
	if err != nil {
		return fmt.Errorf("import stopped: %w", err)
	}

	if importJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printOK("Officials:  %d", report.Officials)
	printOK("Promises:   %d", report.Promises)
	printOK("Actions:    %d", report.Actions)
	fmt.Fprintf(os.Stderr, "  Duplicates: %d\n  Skipped:    %d\n", report.Duplicates, report.Skipped)
	for _, e := range report.Errors {
		printFail("%s", e)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	ds := demo.Generate(demo.Options{
		Seed:                demoSeed,
		Officials:           demoOfficials,
		PromisesPerOfficial: demoPromises,
		ActionsPerOfficial:  demoActions,
	})

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	if err := ds.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", args[0], err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	printOK("Wrote synthetic dataset %s (%d officials, %d promises, %d actions)",
		args[0], len(ds.Officials), len(ds.Promises), len(ds.Actions))

	if !demoImport {
		return nil
	}
	return importDataset(cmd.Context(), cmd, ds, args[0])
}
