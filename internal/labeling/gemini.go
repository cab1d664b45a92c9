package labeling

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/taxonomy"
)

// GeminiClient implements Adapter using the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient creates a Gemini-backed labeling adapter. timeout bounds
// each Classify call; zero means no per-call deadline.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   client.GenerativeModel(modelName),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Name identifies this adapter for logging.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Classify sends the description to Gemini and parses the JSON answer. The
// response is raw model output; the caller sanitizes it.
func (c *GeminiClient) Classify(ctx context.Context, description string, bindings models.BindingSet) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	prompt := buildPrompt(description, bindings)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Result{}, fmt.Errorf("gemini request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return Result{}, fmt.Errorf("gemini returned an empty response")
	}

	result, err := ParseLabelResponse(text)
	if err != nil {
		return Result{}, fmt.Errorf("gemini returned unparseable response: %w", err)
	}

	c.logger.WithFields(
		logging.Field{Key: "category", Value: result.Category},
		logging.Field{Key: "vendor", Value: result.Vendor},
		logging.Field{Key: "confidence", Value: result.CategoryConfidence},
	).Debug("Gemini classified expense")
	return result, nil
}

// buildPrompt renders the categorization prompt: the full taxonomy, worked
// examples, and the expense text with any column context.
func buildPrompt(description string, bindings models.BindingSet) string {
	var b strings.Builder

	b.WriteString("Categorize this property renovation/construction expense.\n\n")
	fmt.Fprintf(&b, "Description: %q\n", description)

	if v, ok := bindings.Active(models.FieldVendorHint); ok && strings.TrimSpace(v.Value) != "" {
		fmt.Fprintf(&b, "Vendor: %q\n", v.Value)
	}
	if a, ok := bindings.Active(models.FieldAmount); ok && strings.TrimSpace(a.Value) != "" {
		fmt.Fprintf(&b, "Amount: %q\n", a.Value)
	}

	b.WriteString("\nChoose the BEST category from this list:\n")
	for _, category := range taxonomy.All() {
		fmt.Fprintf(&b, "- %s\n", category)
	}

	b.WriteString(`
Examples:
- "Purchase" -> Acquisition
- "The Title Company (survey)" -> Closing Costs
- "Edgar Tellez (Demo)" -> Demo
- "Fort Worth Water" -> Utilities
- "Ross Inspections (permit)" -> Permits & Inspections
- "Home Depot (framing)" -> Framing
- "Juan Rivera (concrete)" -> Concrete
- "Ray Tallant (Plumbing)" -> Plumbing

Also extract:
- vendor: the company or person being paid
- investment_type: "CI" if paid cash, "MI" if financed; omit when unclear
- amount: the dollar amount, only if present in the text

Respond ONLY with valid JSON (no markdown):
{
    "category": "exact_category_name_from_list",
    "vendor": "vendor_name",
    "investment_type": "CI",
    "amount": 2500,
    "confidence": 0.95,
    "funding_confidence": 0.9
}
`)
	return b.String()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

var codeFence = regexp.MustCompile("```(?:json)?")

// ParseLabelResponse leniently decodes a model's JSON answer. Markdown code
// fences are stripped and numeric fields tolerate both numbers and strings,
// since models do not reliably honor the response schema.
func ParseLabelResponse(text string) (Result, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))

	var wire map[string]any
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return Result{}, err
	}

	return Result{
		Category:           asString(wire["category"]),
		CategoryConfidence: asFloat(wire["confidence"]),
		Vendor:             asString(wire["vendor"]),
		Funding:            asString(wire["investment_type"]),
		FundingConfidence:  asFloat(wire["funding_confidence"]),
		Amount:             asString(wire["amount"]),
		Date:               asString(wire["date"]),
	}, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}
