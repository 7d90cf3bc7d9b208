package letter

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

// Tones supported for a first draft.
const (
	ToneProfessional = "professional"
	ToneEnthusiastic = "enthusiastic"
	ToneFormal       = "formal"
)

var toneInstructions = map[string]string{
	ToneProfessional: "professional and confident, plain business language",
	ToneEnthusiastic: "energetic and motivated, while staying concrete",
	ToneFormal:       "formal and reserved, suitable for conservative industries",
}

// RefinementPresets maps the named refinement shortcuts to their
// instructions. Callers may also pass free-form instructions.
var RefinementPresets = map[string]string{
	"improve":   "Improve the overall quality of the letter: stronger opening, tighter argumentation, more convincing close.",
	"formalize": "Rewrite the letter in a more formal register without changing its substance.",
	"grammar":   "Fix grammar, spelling and punctuation only. Do not change the wording beyond what the corrections require.",
	"length":    "Shorten the letter to roughly two thirds of its current length, keeping the strongest points.",
}

// Request carries everything needed to draft a letter.
type Request struct {
	ResumeText         string
	JobTitle           string
	CompanyName        string
	JobDescription     string
	Tone               string
	CustomInstructions string
}

type Writer struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewWriter(generator contentGenerator, logger *zap.Logger) *Writer {
	return &Writer{generator: generator, logger: logger}
}

// CoverLetter drafts a letter for the request. An unknown tone falls back
// to professional.
func (w *Writer) CoverLetter(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		return "", fmt.Errorf("resume text is required")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return "", fmt.Errorf("job description is required")
	}

	tone, ok := toneInstructions[req.Tone]
	if !ok {
		tone = toneInstructions[ToneProfessional]
	}

	extra := ""
	if s := strings.TrimSpace(req.CustomInstructions); s != "" {
		extra = "Additional instructions from the candidate:\n" + s
	}

	prompt := promptTemplate
	prompt = strings.ReplaceAll(prompt, "{{TONE}}", tone)
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", req.ResumeText)
	prompt = strings.ReplaceAll(prompt, "{{JOB_TITLE}}", orUnknown(req.JobTitle))
	prompt = strings.ReplaceAll(prompt, "{{COMPANY_NAME}}", orUnknown(req.CompanyName))
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", req.JobDescription)
	prompt = strings.ReplaceAll(prompt, "{{EXTRA_INSTRUCTIONS}}", extra)

	w.logger.Debug("drafting cover letter",
		zap.String("job_title", req.JobTitle),
		zap.String("tone", req.Tone),
	)

	return w.generator.GenerateContent(ctx, prompt)
}

// Refine rewrites an existing letter according to the instructions, which
// may be a preset name or free-form text.
func (w *Writer) Refine(ctx context.Context, current, instructions string) (string, error) {
	if strings.TrimSpace(current) == "" {
		return "", fmt.Errorf("there is no letter to refine")
	}

	if preset, ok := RefinementPresets[strings.TrimSpace(instructions)]; ok {
		instructions = preset
	}
	if strings.TrimSpace(instructions) == "" {
		instructions = RefinementPresets["improve"]
	}

	prompt := fmt.Sprintf(
		"Rework the cover letter below.\n\nInstructions: %s\n\nCover letter:\n%s\n\nReturn only the reworked letter text.",
		instructions, current,
	)

	w.logger.Debug("refining cover letter")

	return w.generator.GenerateContent(ctx, prompt)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not specified)"
	}
	return s
}
