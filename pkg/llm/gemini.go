// Package llm provides the generative text model client used by the
// symptom extractor and the diagnosis fallback, plus the resilience and
// caching decorators that wrap it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// GeminiClient is a thin single-shot wrapper over the Gemini API. It holds
// no conversation state; every Generate call is independent.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *logrus.Logger
}

// NewGeminiClient creates a Gemini-backed text generator.
func NewGeminiClient(ctx context.Context, cfg domain.GeminiConfig, logger *logrus.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger.WithField("model", cfg.Model).Info("Gemini client initialized")

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		log:    logger,
	}, nil
}

// Generate sends a single prompt and returns the trimmed response text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	c.log.WithFields(logrus.Fields{
		"model":        c.model,
		"prompt_bytes": len(prompt),
		"reply_bytes":  len(text),
	}).Debug("Generation completed")

	return text, nil
}
