package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Completer turns a single prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type LLMService struct {
	Client llms.Model
}

// NewLLMService builds a Gemini-backed service. An empty key returns
// ErrLLMUnavailable so callers can run without scoring.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, ErrLLMUnavailable
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
}

const maxPostingChars = 20000

const jobExtractionPrompt = `
You are a Job Posting Extraction Agent. Analyze the raw HTML/Text of a job posting and extract structured data.

### INSTRUCTIONS:
1. Ignore navigation menus, footers, "similar jobs" lists and advertisements.
2. Extract the fields below strictly.
3. Output valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the hiring company",
    "role_title": "Job title",
    "location": "Job location or 'Remote'",
    "description": "Clean summary of responsibilities and requirements without HTML tags",
    "job_link": "Canonical posting URL if present, otherwise null"
}

If a piece of information is missing, set the value to null. Do not guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails asks the model for job-creation JSON from a raw posting.
func ExtractJobDetails(ctx context.Context, c Completer, rawHTML string) (string, error) {
	if c == nil {
		return "", ErrLLMUnavailable
	}
	if len(rawHTML) > maxPostingChars {
		rawHTML = rawHTML[:maxPostingChars]
	}
	resp, err := c.Complete(ctx, fmt.Sprintf(jobExtractionPrompt, rawHTML))
	if err != nil {
		return "", fmt.Errorf("extract job details: %w", err)
	}
	return stripCodeFence(resp), nil
}

// stripCodeFence removes a ```json fence models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
