package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/stats"
)

// maxPromptHTML bounds how much of the posting page is sent to the model.
const maxPromptHTML = 20000

var ErrExtractionDisabled = errors.New("job extraction is not configured")

// Completer is the slice of the LLM client the extractor needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type llmCompleter struct {
	model llms.Model
}

func (c llmCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
}

type LLMService struct {
	Client Completer
}

// NewLLMService connects to Gemini. An empty apiKey yields a service whose
// extraction calls return ErrExtractionDisabled.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return &LLMService{}, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llmCompleter{model: llm}}, nil
}

func (s *LLMService) Enabled() bool { return s != nil && s.Client != nil }

// JobDraft is a pre-filled new-job form. Nothing is stored.
type JobDraft struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Portal     string `json:"portal,omitempty"`
	StatusLink string `json:"status_link,omitempty"`
	Deadline   string `json:"deadline,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

const jobExtractionPrompt = `
You are a Job Data Extraction Agent. Analyze the raw HTML/Text of a job posting and extract structured data.

### INSTRUCTIONS:
1. Ignore navigation menus, footers, "similar jobs" lists and advertisements.
2. Output valid JSON only. Do not wrap it in markdown code blocks.

### OUTPUT SCHEMA:
{
    "title": "Job title (e.g., Senior Backend Engineer)",
    "company": "Company name (e.g., Google)",
    "portal": "One of %s if the page is hosted there, otherwise empty",
    "deadline": "Application deadline as YYYY-MM-DD if stated, otherwise empty",
    "notes": "Two or three sentence summary of responsibilities and requirements"
}

If a piece of information is missing, use an empty string. Do not guess.

### RAW CONTENT:
%s
`

// ExtractJobDraft asks the model to read a posting page and returns a draft.
// Values the model invents outside the allowed sets are dropped.
func (s *LLMService) ExtractJobDraft(ctx context.Context, rawHTML, pageURL string) (*JobDraft, error) {
	if !s.Enabled() {
		return nil, ErrExtractionDisabled
	}
	rawHTML = truncateUTF8(rawHTML, maxPromptHTML)

	prompt := fmt.Sprintf(jobExtractionPrompt, strings.Join(models.Portals, ", "), rawHTML)
	resp, err := s.Client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm extraction: %w", err)
	}

	var draft JobDraft
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &draft); err != nil {
		return nil, fmt.Errorf("decode llm response: %w", err)
	}

	draft.Title = strings.TrimSpace(draft.Title)
	draft.Company = strings.TrimSpace(draft.Company)
	draft.StatusLink = pageURL
	if !models.ValidPortal(draft.Portal) {
		draft.Portal = ""
	}
	if _, ok := stats.ParseDate(draft.Deadline); !ok {
		draft.Deadline = ""
	}
	return &draft, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripCodeFence removes a ```json fence some models add despite the prompt.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
