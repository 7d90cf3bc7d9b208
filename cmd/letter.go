package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/letter"
	"github.com/jobpilot/jobpilot/internal/secrets"
)

var letterCmd = &cobra.Command{
	Use:   "letter",
	Short: "Draft and refine cover letters for stored matches",
}

var letterGenerateCmd = &cobra.Command{
	Use:   "generate <match-id>",
	Short: "Draft a cover letter for a match and store it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		letterGenerate(cmd, args)
	},
}

var letterRefineCmd = &cobra.Command{
	Use:   "refine <match-id>",
	Short: "Rework the stored cover letter of a match",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		letterRefine(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(letterCmd)
	letterCmd.AddCommand(letterGenerateCmd)
	letterCmd.AddCommand(letterRefineCmd)

	letterGenerateCmd.Flags().String("tone", letter.ToneProfessional, "tone of the letter: professional, enthusiastic or formal")
	letterGenerateCmd.Flags().String("instructions", "", "extra instructions for the draft")

	letterRefineCmd.Flags().String("instructions", "improve", "preset (improve, formalize, grammar, length) or free-form instructions")
}

func letterGenerate(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		logger.Fatal("match id must be a number", zap.String("argument", args[0]))
	}

	s := openStore(ctx, config, logger)
	defer s.Close()

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		logger.Fatal("loading match", zap.Int64("match", matchID), zap.Error(err))
	}
	if match.ResumeID == nil {
		logger.Fatal("match has no resume to draft from", zap.Int64("match", matchID))
	}

	resume, err := s.GetResume(ctx, *match.ResumeID)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	offer, err := s.GetOffer(ctx, match.OfferID)
	if err != nil {
		logger.Fatal("loading offer", zap.Error(err))
	}

	writer := newLetterWriter(ctx, config, logger)

	tone, _ := cmd.Flags().GetString("tone")
	instructions, _ := cmd.Flags().GetString("instructions")

	draft, err := writer.CoverLetter(ctx, letter.Request{
		ResumeText:         resume.ExtractedText,
		JobTitle:           offer.Title,
		CompanyName:        offer.CompanyName,
		JobDescription:     offer.Description,
		Tone:               tone,
		CustomInstructions: instructions,
	})
	if err != nil {
		logger.Fatal("drafting cover letter", zap.Error(err))
	}

	if err := s.SaveCoverLetter(ctx, matchID, draft); err != nil {
		logger.Fatal("saving cover letter", zap.Error(err))
	}

	fmt.Println(draft)
	logger.Info("cover letter stored", zap.Int64("match", matchID))
}

func letterRefine(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		logger.Fatal("match id must be a number", zap.String("argument", args[0]))
	}

	s := openStore(ctx, config, logger)
	defer s.Close()

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		logger.Fatal("loading match", zap.Int64("match", matchID), zap.Error(err))
	}
	if match.CoverLetter == "" {
		logger.Fatal("match has no cover letter yet, generate one first", zap.Int64("match", matchID))
	}

	writer := newLetterWriter(ctx, config, logger)

	instructions, _ := cmd.Flags().GetString("instructions")

	refined, err := writer.Refine(ctx, match.CoverLetter, instructions)
	if err != nil {
		logger.Fatal("refining cover letter", zap.Error(err))
	}

	if err := s.SaveCoverLetter(ctx, matchID, refined); err != nil {
		logger.Fatal("saving cover letter", zap.Error(err))
	}

	fmt.Println(refined)
	logger.Info("cover letter updated", zap.Int64("match", matchID))
}

func newLetterWriter(ctx context.Context, config *Config, logger *zap.Logger) *letter.Writer {
	if config.AI == nil || config.AI.Gemini == nil {
		logger.Fatal("gemini configuration is required",
			zap.String("hint", "set ai.gemini.api-key-file in the configuration file"),
		)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Fatal("loading gemini api key", zap.Error(err))
	}

	generator, err := letter.NewGenerator(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		logger.Fatal("creating gemini generator", zap.Error(err))
	}

	return letter.NewWriter(generator, logger.With(zap.String("model", generator.Model())))
}
