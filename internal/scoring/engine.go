// Package scoring computes the lexical fit score between a resume and a job
// description. The engine is pure: no I/O, no ambient configuration reads.
package scoring

import (
	"strings"
	"unicode"
)

// DefaultMultiplier calibrates the raw overlap ratio so that roughly 10% of
// common tokens already reads as a strong contextual match.
const DefaultMultiplier = 300

// defaultStopWords are short function words of the working languages
// (French and English) that only add noise to the overlap.
var defaultStopWords = []string{
	// French
	"le", "la", "les", "de", "du", "des", "et", "en",
	"un", "une", "pour", "avec", "nous", "vous",
	// English
	"a", "an", "and", "are", "as", "at", "be", "but", "by",
	"for", "if", "in", "is", "it", "of", "on", "or", "the",
	"to", "we", "with", "you", "your", "our",
}

// Config carries the tunable parameters of the engine. Zero values fall back
// to the defaults, so Config{} is a valid configuration.
type Config struct {
	// Multiplier scales the overlap ratio before clamping to [0,100].
	Multiplier int
	// ExtraStopWords are removed from both token sets in addition to the
	// built-in function words.
	ExtraStopWords []string
}

// Engine scores resume/job-description pairs. Safe for concurrent use.
type Engine struct {
	multiplier int
	stopWords  map[string]struct{}
}

// NewEngine builds an Engine from the provided configuration.
func NewEngine(cfg Config) *Engine {
	multiplier := cfg.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}

	stopWords := make(map[string]struct{}, len(defaultStopWords)+len(cfg.ExtraStopWords))
	for _, w := range defaultStopWords {
		stopWords[w] = struct{}{}
	}
	for _, w := range cfg.ExtraStopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stopWords[w] = struct{}{}
		}
	}

	return &Engine{multiplier: multiplier, stopWords: stopWords}
}

// Score compares the resume text with the job description and returns a fit
// score in [0,100].
//
// The measure is deliberately asymmetric: the denominator is the size of the
// job-description token set, so Score(a, b) need not equal Score(b, a). An
// offer whose vocabulary is fully covered by the resume scores high even when
// the resume mentions much more than the offer asks for.
func (e *Engine) Score(resumeText, jobDescription string) int {
	if resumeText == "" || jobDescription == "" {
		return 0
	}

	resumeWords := e.tokenize(resumeText)
	jobWords := e.tokenize(jobDescription)

	if len(jobWords) == 0 {
		return 0
	}

	common := 0
	for w := range jobWords {
		if _, ok := resumeWords[w]; ok {
			common++
		}
	}

	raw := common * e.multiplier / len(jobWords)
	if raw > 100 {
		return 100
	}
	return raw
}

// tokenize splits the text into the set of unique lowercase alphanumeric
// runs, with stop words removed. Single pass over the input.
func (e *Engine) tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		word := b.String()
		b.Reset()
		if _, stop := e.stopWords[word]; !stop {
			tokens[word] = struct{}{}
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}
