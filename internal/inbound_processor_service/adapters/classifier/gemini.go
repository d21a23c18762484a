// Package classifier holds the intent classifier adapters used by the inbound processor.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
)

const intentPrompt = `אתה עוזר וירטואלי המיועד להבין את הכוונה שמסתתרת מאחורי ההודעה.
ההודעה שהתקבלה היא: %s

איך היית מפרש את ההודעה הזאת?
נסה להוציא את הכוונה המרכזית של השואל ולנסח את התשובה על פי הכוונה שמסתתרת בהודעה.
לדוגמא: אם מדובר בבקשה לתיקון מדפים, אמור זאת באופן ברור.
התשובה שלך לא תכיל יותר מ-2 שורות ותהיה תמציתית ככל האפשר.`

const maxIntentLength = 500

// ContentGenerator is the slice of the genai Models service the classifier needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier asks a Gemini model for a short description of a message's intent.
type GeminiClassifier struct {
	models ContentGenerator
	model  string
	config *genai.GenerateContentConfig
	logger *slog.Logger
}

// NewGeminiClient creates the genai client for the Gemini API backend.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

// NewGeminiClassifier wraps models (usually client.Models) for model.
func NewGeminiClassifier(models ContentGenerator, model string, logger *slog.Logger) *GeminiClassifier {
	temperature := float32(0.2)
	return &GeminiClassifier{
		models: models,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: 256,
		},
		logger: logger.With("component", "gemini_classifier", "model", model),
	}
}

func (c *GeminiClassifier) Classify(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(fmt.Sprintf(intentPrompt, text), genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, c.config)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			c.logger.WarnContext(ctx, "Gemini API error", "code", apiErr.Code, "status", apiErr.Status, "message", apiErr.Message)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("empty response from model")
	}

	intent := strings.TrimSpace(resp.Text())
	if intent == "" {
		return "", errors.New("model returned no text")
	}
	if r := []rune(intent); len(r) > maxIntentLength {
		intent = string(r[:maxIntentLength])
	}
	return intent, nil
}

// Disabled is used when no intent provider is configured; every call fails so the fallback label is stored.
type Disabled struct{}

func (Disabled) Classify(context.Context, string) (string, error) {
	return "", domain.ErrClassifierUnavailable
}

// Static always returns the same label. Useful for local runs and tests.
type Static string

func (s Static) Classify(context.Context, string) (string, error) {
	return string(s), nil
}
