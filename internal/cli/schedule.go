package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	scheduleSpec        string
	scheduleMetricsAddr string
	scheduleRunNow      bool
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run match and score on a cron schedule",
	Long: `Schedule keeps running and executes the full pipeline (match, then
score) on a cron schedule. A run still in progress when the next one is due
is skipped. Prometheus metrics are served on --metrics-addr at /metrics.

Example:
  politikcred schedule --cron "0 3 * * *"
  politikcred schedule --cron "@every 6h" --metrics-addr :9090 --now`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "0 3 * * *", "cron schedule (standard 5-field spec or @every/@daily)")
	scheduleCmd.Flags().StringVar(&scheduleMetricsAddr, "metrics-addr", ":9090", "address for the /metrics endpoint (empty disables it)")
	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "now", false, "run once immediately before waiting for the schedule")
	scheduleCmd.Flags().DurationVar(&matchTimeout, "timeout", time.Hour, "timeout for each run")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	runOnce := func() {
		runCtx, cancel := context.WithTimeout(ctx, matchTimeout)
		defer cancel()
		if err := runPipeline(runCtx, a); err != nil {
			log.WithError(err).Error("Scheduled run failed")
		}
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(scheduleSpec, runOnce); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", scheduleSpec, err)
	}

	var srv *http.Server
	if scheduleMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		srv = &http.Server{Addr: scheduleMetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
		printOK("Metrics on %s/metrics", scheduleMetricsAddr)
	}

	if scheduleRunNow {
		runOnce()
	}

	c.Start()
	printOK("Scheduled %q; next run %s", scheduleSpec, c.Entries()[0].Next.Format(time.RFC3339))
	fmt.Fprintln(os.Stderr, "  Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Fprintln(os.Stderr)
	log.Info("Stopping scheduler, waiting for the current run")

	stopped := c.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	<-stopped.Done()
	return nil
}
