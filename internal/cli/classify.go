package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/politikcred/internal/classify"
	"github.com/ppiankov/politikcred/internal/dataset"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/source"
	"github.com/spf13/cobra"
)

var (
	classifyURL        string
	classifyJSON       bool
	classifySave       bool
	classifyOfficial   string
	classifySourceType string
	classifyStatedAt   string
	classifyTimeout    time.Duration
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [file|-]",
	Short: "Find promises in a speech, interview or manifesto",
	Long: `Classify splits text into sentences and keeps those carrying a
commitment cue ("je m'engage", "nous allons", "I will"). Hedged sentences
("peut-être", "si", "maybe") are never promises.

Each candidate gets a category, a confidence (0.9 for first-person
commitments, 0.6 for aspirations) and an actionability flag.

Example:
  politikcred classify discours.txt
  politikcred classify --url https://example.org/discours --json
  cat interview.txt | politikcred classify - --save --official <id> --stated-at 2022-04-01`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyURL, "url", "", "fetch the text from a web page (robots.txt is honored)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print candidates as JSON")
	classifyCmd.Flags().BoolVar(&classifySave, "save", false, "store candidates as pending promises")
	classifyCmd.Flags().StringVar(&classifyOfficial, "official", "", "official id the promises are attributed to (required with --save)")
	classifyCmd.Flags().StringVar(&classifySourceType, "source-type", "speech", "source type recorded with saved promises")
	classifyCmd.Flags().StringVar(&classifyStatedAt, "stated-at", "", "date the text was stated (YYYY-MM-DD, default today)")
	classifyCmd.Flags().DurationVar(&classifyTimeout, "timeout", time.Minute, "overall timeout")
}

func runClassify(cmd *cobra.Command, args []string) error {
	if classifySave && classifyOfficial == "" {
		return errors.New("--save requires --official")
	}
	if classifyURL == "" && len(args) == 0 {
		return errors.New("provide a file, - for stdin, or --url")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), classifyTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	compiled, err := compileRules(cfg)
	if err != nil {
		return err
	}

	input, sourceURL, err := readClassifyInput(ctx, cfg, args)
	if err != nil {
		return err
	}

	candidates := classify.New(compiled).Classify(input, sourceURL)
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d promise candidates\n", len(candidates))
	}

	if classifyJSON {
		if err := writeJSON(cmd.OutOrStdout(), candidates); err != nil {
			return err
		}
	} else {
		printCandidates(cmd.OutOrStdout(), candidates)
	}

	if !classifySave {
		return nil
	}
	return saveCandidates(ctx, candidates, sourceURL)
}

func readClassifyInput(ctx context.Context, cfg *model.Config, args []string) (string, string, error) {
	if classifyURL != "" {
		page, err := source.NewFetcher(cfg.HTTP).Fetch(ctx, classifyURL)
		if err != nil {
			return "", "", fmt.Errorf("fetch %s: %w", classifyURL, err)
		}
		return page.Text, page.FinalURL, nil
	}

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("read input: %w", err)
	}
	return string(data), "", nil
}

func printCandidates(w io.Writer, candidates []classify.Candidate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCATEGORY\tCONF\tACTIONABLE\tTEXT")
	for _, c := range candidates {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%v\t%s\n", c.Sentence, c.Category, c.Confidence, c.Actionable, truncate(c.Text, 100))
	}
	_ = tw.Flush()
}

func saveCandidates(ctx context.Context, candidates []classify.Candidate, sourceURL string) error {
	statedAt := time.Now().UTC().Truncate(24 * time.Hour)
	if classifyStatedAt != "" {
		t, err := dataset.ParseDate(classifyStatedAt)
		if err != nil {
			return err
		}
		statedAt = t
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.store.GetOfficial(ctx, classifyOfficial); err != nil {
		return fmt.Errorf("official %s: %w", classifyOfficial, err)
	}

	saved := 0
	for _, c := range candidates {
		id := uuid.NewString()
		if sourceURL != "" {
			id = dataset.StableID("promise", classifyOfficial, c.Text, sourceURL)
		}
		p, err := c.ToPromise(id, classifyOfficial, model.Source{Type: classifySourceType, URL: sourceURL}, statedAt)
		if err != nil {
			printFail("%s: %v", truncate(c.Text, 60), err)
			continue
		}
		switch err := a.store.InsertPromise(ctx, p); {
		case errors.Is(err, model.ErrDuplicate):
			printWarn("already stored: %s", truncate(c.Text, 60))
		case err != nil:
			printFail("%s: %v", truncate(c.Text, 60), err)
		default:
			saved++
		}
	}
	printOK("Saved %d pending promises for %s", saved, classifyOfficial)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
