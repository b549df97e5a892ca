package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/radassist/internal/models"
	"github.com/lehigh-university-libraries/radassist/internal/providers"
)

type Client struct {
	provider   providers.Provider
	model      string
	configured bool
	timeout    time.Duration
}

type Options struct {
	Model string
	// Configured is false when the provider needs a credential that is missing.
	Configured bool
	// Timeout bounds a single call; zero means no limit.
	Timeout time.Duration
}

func NewClient(provider providers.Provider, opts Options) *Client {
	return &Client{
		provider:   provider,
		model:      opts.Model,
		configured: opts.Configured,
		timeout:    opts.Timeout,
	}
}

// Ready reports ErrConfiguration when no credential is available
func (c *Client) Ready() error {
	if !c.configured || c.provider == nil {
		return ErrConfiguration
	}
	return nil
}

// Analyze sends one image and the clinical notes to the provider and parses the result.
// There is exactly one attempt.
func (c *Client) Analyze(ctx context.Context, encodedImage, mimeType, notes string) (*models.AnalysisResult, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	req := BuildRequest(encodedImage, mimeType, notes)
	req.Model = c.model

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.provider.Generate(ctx, req)
	if err != nil {
		slog.Error("Error analyzing medical scan", "provider", c.provider.Name(), "model", c.model, "err", err)
		return nil, &ServiceError{Provider: c.provider.Name(), Err: err}
	}

	result, err := parseResult(text)
	if err != nil {
		slog.Error("Unparsable analysis response", "provider", c.provider.Name(), "model", c.model, "err", err)
		return nil, &FormatError{Provider: c.provider.Name(), Payload: text, Err: err}
	}

	slog.Info("Analysis completed", "provider", c.provider.Name(), "model", c.model, "duration", time.Since(start))
	return result, nil
}

func parseResult(text string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
