package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/alerts"
)

const defaultInterval = "@every 30m"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the alert check on a schedule until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		watch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("interval", "", "cron spec or @every duration between runs (overrides config)")
	watchCmd.Flags().Int("limit", alerts.DefaultLimit, "max offers fetched per alert")
	watchCmd.Flags().Int("min-score", 0, "minimum score an offer must reach (overrides config)")
}

func watch(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobpilot watcher", zap.String("version", version))

	s := openStore(ctx, config, logger)
	defer s.Close()

	checker := newChecker(config, s, logger)
	opts := checkOptions(cmd, config)

	interval := defaultInterval
	if config.Alerts != nil && config.Alerts.Interval != "" {
		interval = config.Alerts.Interval
	}
	if v, err := cmd.Flags().GetString("interval"); err == nil && v != "" {
		interval = v
	}

	runOnce := func() {
		report, err := checker.RunOnce(ctx, opts)
		if err != nil {
			logger.Error("alert run failed", zap.Error(err))
			return
		}
		logger.Info("alert run finished",
			zap.Int("succeeded", report.Succeeded()),
			zap.Int("failed", report.Failed()),
			zap.Int("skipped", report.Skipped()),
		)
	}

	// A run that outlasts the interval must not overlap the next firing.
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(interval, runOnce); err != nil {
		logger.Fatal("invalid interval", zap.String("interval", interval), zap.Error(err))
	}

	// First run happens right away, the schedule covers the rest.
	runOnce()

	scheduler.Start()
	logger.Info("watcher scheduled", zap.String("interval", interval))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down watcher")
	<-scheduler.Stop().Done()
}
