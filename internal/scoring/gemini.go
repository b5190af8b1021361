package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text at all.
var ErrEmptyResponse = errors.New("scoring model returned no content")

// contentGenerator is the subset of *genai.Models the scorer needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiScorer scores questionnaires with a Gemini model using schema-guided JSON output.
type GeminiScorer struct {
	models   contentGenerator
	model    string
	language string
	log      zerolog.Logger
}

// NewGeminiClient creates a Gemini API client from an API key.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiScorer creates a scorer on top of client.Models.
func NewGeminiScorer(client *genai.Client, model, language string, log zerolog.Logger) *GeminiScorer {
	return newGeminiScorer(client.Models, model, language, log)
}

func newGeminiScorer(models contentGenerator, model, language string, log zerolog.Logger) *GeminiScorer {
	return &GeminiScorer{
		models:   models,
		model:    model,
		language: language,
		log:      log.With().Str("component", "gemini_scorer").Str("model", model).Logger(),
	}
}

// Score sends one GenerateContent request and validates the JSON it returns.
func (s *GeminiScorer) Score(ctx context.Context, in Input) (*Result, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
		Temperature:      genai.Ptr[float32](0.4),
	}

	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(BuildPrompt(in, s.language)), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	res, err := Parse([]byte(text))
	if err != nil {
		s.log.Warn().Err(err).Int("response_bytes", len(text)).Msg("Rejected scoring response")
		return nil, err
	}

	s.log.Debug().Str("type_code", res.TypeCode).Msg("Scoring response accepted")
	return res, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
