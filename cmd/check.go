package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/alerts"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every active alert for new offers once",
	Run: func(cmd *cobra.Command, _ []string) {
		check(cmd)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("dry-run", false, "report what would be stored without writing anything")
	checkCmd.Flags().Int("limit", alerts.DefaultLimit, "max offers fetched per alert")
	checkCmd.Flags().Int("min-score", 0, "minimum score an offer must reach (overrides config)")
}

func check(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobpilot", zap.String("version", version))

	s := openStore(ctx, config, logger)
	defer s.Close()

	checker := newChecker(config, s, logger)

	opts := checkOptions(cmd, config)

	report, err := checker.RunOnce(ctx, opts)
	if err != nil {
		logger.Fatal("alert run failed", zap.Error(err))
	}

	printReport(report)

	logger.Info("alert run finished",
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
		zap.Int("skipped", report.Skipped()),
	)
}

func checkOptions(cmd *cobra.Command, config *Config) alerts.Options {
	opts := alerts.Options{}

	if config.Alerts != nil {
		opts.MinScore = config.Alerts.MinScore
		opts.Limit = config.Alerts.Limit
	}

	if v, err := cmd.Flags().GetBool("dry-run"); err == nil {
		opts.DryRun = v
	}
	if v, err := cmd.Flags().GetInt("limit"); err == nil && v > 0 {
		opts.Limit = v
	}
	if v, err := cmd.Flags().GetInt("min-score"); err == nil && v > 0 {
		opts.MinScore = v
	}

	return opts
}

func printReport(report *alerts.Report) {
	for _, o := range report.Outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("alert %d (%s): FAILED: %v\n", o.AlertID, o.ResumeTitle, o.Err)
		case o.Skipped != "":
			fmt.Printf("alert %d: skipped (%s)\n", o.AlertID, o.Skipped)
		case o.DryRun:
			fmt.Printf("alert %d (%s): dry run, %d of %d offers would be kept\n",
				o.AlertID, o.ResumeTitle, o.OffersKept, o.OffersFound)
		default:
			fmt.Printf("alert %d (%s): %d offers found, %d kept, %d new matches\n",
				o.AlertID, o.ResumeTitle, o.OffersFound, o.OffersKept, o.NewMatches)
		}
	}
}
