package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"github.com/reportlens/reportlens/internal/analysis"
)

var extractionTracer = otel.Tracer("reportlens.internal.extraction")

const extractionPrompt = `You are an information extraction system.

Extract lab test data from the following medical report text.
Return ONLY valid JSON matching this schema.

Schema:
{
  "patient": {
    "name": string | null,
    "age": number | null,
    "gender": string | null
  },
  "tests": [
    {
      "test_name": string,
      "value": string,
      "unit": string | null,
      "reference_range": string | null
    }
  ]
}

Rules:
- Do not add explanations
- Do not hallucinate missing values
- If unsure, use null

Medical Report Text:
`

// GeminiExtractor extracts structured observations using Google's Gemini API.
type GeminiExtractor struct {
	client  *genai.Client
	modelID string
}

// NewGeminiExtractor creates a Gemini-backed extractor.
func NewGeminiExtractor(ctx context.Context, apiKey, modelID string) (*GeminiExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("extraction: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("extraction: failed to create gemini client: %w", err)
	}

	return &GeminiExtractor{client: client, modelID: modelID}, nil
}

// Extract sends the report text to Gemini and validates the JSON response.
func (e *GeminiExtractor) Extract(ctx context.Context, text string) (analysis.Extraction, error) {
	text = CleanText(text)
	if text == "" {
		return analysis.Extraction{}, ErrEmptyText
	}

	ctx, span := extractionTracer.Start(ctx, "extraction.gemini.extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("reportlens.model_id", e.modelID),
		attribute.Int("reportlens.text_length", len(text)),
	)

	model := e.client.GenerativeModel(e.modelID)
	// Low temperature for consistent extraction.
	model.SetTemperature(0.1)
	model.SystemInstruction = genai.NewUserContent(genai.Text(
		"You are a medical data extraction assistant. Return only valid JSON.",
	))

	resp, err := model.GenerateContent(ctx, genai.Text(extractionPrompt+text))
	if err != nil {
		span.RecordError(err)
		return analysis.Extraction{}, fmt.Errorf("extraction: gemini call failed: %w", err)
	}

	raw, err := responseText(resp)
	if err != nil {
		span.RecordError(err)
		return analysis.Extraction{}, err
	}

	ext, err := analysis.DecodeExtraction([]byte(StripJSONFences(raw)))
	if err != nil {
		span.RecordError(err)
		return analysis.Extraction{}, err
	}

	span.SetAttributes(attribute.Int("reportlens.observation_count", len(ext.Observations)))
	return ext, nil
}

// Close releases resources held by the Gemini client.
func (e *GeminiExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("extraction: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("extraction: gemini returned empty content")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// StripJSONFences removes a surrounding ```json code fence, which models add
// despite instructions not to.
func StripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
