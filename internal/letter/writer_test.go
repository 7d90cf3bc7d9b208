package letter

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func validRequest() Request {
	return Request{
		ResumeText:     "Experienced Python developer. Django, Docker.",
		JobTitle:       "Python Developer",
		CompanyName:    "ACME",
		JobDescription: "We need a Python Django developer with Docker experience",
		Tone:           ToneProfessional,
	}
}

func TestCoverLetterPrompt(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "Dear hiring manager, ..."}
	writer := NewWriter(stub, zap.NewNop())

	draft, err := writer.CoverLetter(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft != "Dear hiring manager, ..." {
		t.Fatalf("unexpected draft: %q", draft)
	}

	for _, want := range []string{
		"Experienced Python developer",
		"Python Developer",
		"ACME",
		"We need a Python Django developer",
		toneInstructions[ToneProfessional],
	} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, stub.lastPrompt)
		}
	}

	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("unresolved placeholder left in prompt:\n%s", stub.lastPrompt)
	}
}

func TestCoverLetterUnknownToneFallsBack(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "letter"}
	writer := NewWriter(stub, zap.NewNop())

	req := validRequest()
	req.Tone = "sarcastic"

	if _, err := writer.CoverLetter(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastPrompt, toneInstructions[ToneProfessional]) {
		t.Fatalf("unknown tone must fall back to professional")
	}
}

func TestCoverLetterCustomInstructions(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "letter"}
	writer := NewWriter(stub, zap.NewNop())

	req := validRequest()
	req.CustomInstructions = "Mention my open source work."

	if _, err := writer.CoverLetter(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastPrompt, "Mention my open source work.") {
		t.Fatalf("custom instructions missing from prompt:\n%s", stub.lastPrompt)
	}
}

func TestCoverLetterRequiredFields(t *testing.T) {
	t.Parallel()

	writer := NewWriter(&stubGenerator{response: "letter"}, zap.NewNop())
	ctx := context.Background()

	req := validRequest()
	req.ResumeText = "  "
	if _, err := writer.CoverLetter(ctx, req); err == nil {
		t.Fatalf("expected error for missing resume text")
	}

	req = validRequest()
	req.JobDescription = ""
	if _, err := writer.CoverLetter(ctx, req); err == nil {
		t.Fatalf("expected error for missing job description")
	}
}

func TestRefinePresets(t *testing.T) {
	t.Parallel()

	for preset, instructions := range RefinementPresets {
		stub := &stubGenerator{response: "reworked"}
		writer := NewWriter(stub, zap.NewNop())

		if _, err := writer.Refine(context.Background(), "Dear hiring manager", preset); err != nil {
			t.Fatalf("refine with %q: %v", preset, err)
		}
		if !strings.Contains(stub.lastPrompt, instructions) {
			t.Fatalf("preset %q not expanded in prompt:\n%s", preset, stub.lastPrompt)
		}
	}
}

func TestRefineFreeFormInstructions(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "reworked"}
	writer := NewWriter(stub, zap.NewNop())

	if _, err := writer.Refine(context.Background(), "Dear hiring manager", "translate to French"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastPrompt, "translate to French") {
		t.Fatalf("free-form instructions missing:\n%s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "Dear hiring manager") {
		t.Fatalf("current letter missing from prompt:\n%s", stub.lastPrompt)
	}
}

func TestRefineRequiresALetter(t *testing.T) {
	t.Parallel()

	writer := NewWriter(&stubGenerator{}, zap.NewNop())

	if _, err := writer.Refine(context.Background(), "", "improve"); err == nil {
		t.Fatalf("expected error for empty letter")
	}
}

func TestCoverLetterGeneratorError(t *testing.T) {
	t.Parallel()

	writer := NewWriter(&stubGenerator{err: fmt.Errorf("quota exceeded")}, zap.NewNop())

	if _, err := writer.CoverLetter(context.Background(), validRequest()); err == nil {
		t.Fatalf("expected generator error to surface")
	}
}
