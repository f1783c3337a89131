package speech

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the subset of *genai.Models the translator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiTranslator translates with a Gemini model.
type GeminiTranslator struct {
	models contentGenerator
	model  string
}

// NewGeminiTranslator creates a Gemini-backed translator. An empty model
// selects DefaultGeminiModel.
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newGeminiTranslator(client.Models, model), nil
}

func newGeminiTranslator(models contentGenerator, model string) *GeminiTranslator {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiTranslator{models: models, model: model}
}

// Name returns the translator name.
func (g *GeminiTranslator) Name() string { return "gemini" }

// Translate asks the model for a plain translation of text into lang.
func (g *GeminiTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty input", ErrTranslation)
	}
	if lang == "" {
		lang = LangHindi
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			"You are a news translator. Reply with the translation only, keep line breaks and numbering.",
			genai.RoleUser,
		),
		Temperature: genai.Ptr[float32](0.2),
	}
	prompt := fmt.Sprintf("Translate the following text into the language with ISO code %q:\n\n%s", lang, text)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", ErrTranslation, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: gemini returned no response", ErrTranslation)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("%w: gemini returned no text", ErrTranslation)
	}
	return out, nil
}

// NewTranslator builds the translator named by backend ("google" or "gemini").
func NewTranslator(ctx context.Context, backend, geminiKey, geminiModel string, opts ...GoogleOption) (Translator, error) {
	switch strings.ToLower(backend) {
	case "", "google":
		return NewGoogleTranslator(opts...), nil
	case "gemini":
		return NewGeminiTranslator(ctx, geminiKey, geminiModel)
	default:
		return nil, fmt.Errorf("unknown translator %q", backend)
	}
}
