package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"github.com/reportlens/reportlens/internal/analysis"
)

// GeminiExplainer generates short per-test explanations in one batch call
// per report.
type GeminiExplainer struct {
	client  *genai.Client
	modelID string
}

// NewGeminiExplainer creates a Gemini-backed explainer.
func NewGeminiExplainer(ctx context.Context, apiKey, modelID string) (*GeminiExplainer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("extraction: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("extraction: failed to create gemini client: %w", err)
	}
	return &GeminiExplainer{client: client, modelID: modelID}, nil
}

// Explain requests context-aware explanations for every result in one call.
// The response is a JSON object keyed by test name. Tests the model skipped
// get a generic fallback sentence so the UI never shows a blank.
func (e *GeminiExplainer) Explain(ctx context.Context, patient analysis.PatientProfile, results []analysis.InterpretedTestResult) (map[string]string, error) {
	if len(results) == 0 {
		return map[string]string{}, nil
	}

	ctx, span := extractionTracer.Start(ctx, "extraction.gemini.explain")
	defer span.End()
	span.SetAttributes(attribute.Int("reportlens.result_count", len(results)))

	var details strings.Builder
	for _, res := range results {
		fmt.Fprintf(&details, "- %s: value=%s %s, interpretation=%s", res.TestName, res.Value, res.Unit, res.Interpretation)
		if res.ReferenceRange != "" {
			fmt.Fprintf(&details, ", reference_range=%s", res.ReferenceRange)
		}
		details.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Provide context-aware explanations for each of these medical tests based on the patient's specific values and interpretations. For each test, explain:

1. What the test measures
2. What the patient's specific result means in context
3. Any health implications of the result

Be specific about the patient's values and whether they are normal, high, or low. Keep each explanation to 2-3 sentences.

Test Results:
%s
Format your response as a JSON object where each key is the test name and the value is the explanation.`, details.String())

	model := e.client.GenerativeModel(e.modelID)
	// Slightly higher temperature than extraction: explanations are prose.
	model.SetTemperature(0.3)
	model.SystemInstruction = genai.NewUserContent(genai.Text(
		"You are a medical expert providing test explanations. Return only valid JSON.",
	))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		span.RecordError(err)
		return FallbackExplanations(results), fmt.Errorf("extraction: gemini explain failed: %w", err)
	}

	raw, err := responseText(resp)
	if err != nil {
		span.RecordError(err)
		return FallbackExplanations(results), err
	}

	explanations := map[string]string{}
	if err := json.Unmarshal([]byte(StripJSONFences(raw)), &explanations); err != nil {
		span.RecordError(err)
		return FallbackExplanations(results), fmt.Errorf("extraction: decode explanations: %w", err)
	}

	for _, res := range results {
		if _, ok := explanations[res.TestName]; !ok {
			explanations[res.TestName] = genericExplanation(res.TestName)
		}
	}
	return explanations, nil
}

// Close releases resources held by the Gemini client.
func (e *GeminiExplainer) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// FallbackExplanations returns the generic sentence for every result, used
// when the model call fails so the report still saves with display text.
func FallbackExplanations(results []analysis.InterpretedTestResult) map[string]string {
	out := make(map[string]string, len(results))
	for _, res := range results {
		out[res.TestName] = genericExplanation(res.TestName)
	}
	return out
}

func genericExplanation(testName string) string {
	return fmt.Sprintf("This test measures %s levels in the body.", testName)
}
