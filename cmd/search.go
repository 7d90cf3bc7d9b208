package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/alerts"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var searchPrompt = promptui.Select{
	Label: "Store these offers as matches?",
	Items: []string{PromptYes, PromptNo},
}

var searchCmd = &cobra.Command{
	Use:   "search <resume-id>",
	Short: "Search and score offers for one resume interactively",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		search(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("page", 1, "result page to fetch")
	searchCmd.Flags().Int("limit", alerts.DefaultLimit, "max offers to fetch")
	searchCmd.Flags().BoolP("auto-approve", "y", false, "store matches without asking for confirmation")
}

func search(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	resumeID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		logger.Fatal("resume id must be a number", zap.String("argument", args[0]))
	}

	s := openStore(ctx, config, logger)
	defer s.Close()

	resume, err := s.GetResume(ctx, resumeID)
	if err != nil {
		logger.Fatal("loading resume", zap.Int64("resume", resumeID), zap.Error(err))
	}

	checker := newChecker(config, s, logger)

	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	logger.Info("starting the search",
		zap.String("resume", resume.Title),
		zap.String("keywords", alerts.SearchKeywords(resume)),
	)

	scored, err := checker.FindOffers(ctx, resume, page, limit)
	if errors.Is(err, alerts.ErrSearchUnavailable) {
		logger.Fatal("job search is temporarily unavailable, try again later")
	}
	if err != nil {
		logger.Fatal("searching offers", zap.Error(err))
	}

	if len(scored) == 0 {
		logger.Info("exiting", zap.String("reason", "no offers found"))
		return
	}

	for _, so := range scored {
		fmt.Printf("[%3d] %s / %s / %s\n", so.Score, so.Offer.Title, so.Offer.CompanyName, so.Offer.URL)
	}

	action := PromptYes
	if auto, _ := cmd.Flags().GetBool("auto-approve"); !auto {
		_, action, err = searchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	if action != PromptYes {
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}

	stored, err := checker.SaveMatches(ctx, resume, scored)
	if err != nil {
		logger.Fatal("storing matches", zap.Error(err))
	}

	logger.Info("matches stored", zap.Int("new", stored), zap.Int("offers", len(scored)))
}
