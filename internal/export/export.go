package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lehigh-university-libraries/radassist/internal/models"
	"github.com/lehigh-university-libraries/radassist/internal/workflow"
	"gopkg.in/yaml.v3"
)

var ErrNoResult = errors.New("no analysis result available")

// Report is the downloadable form of a completed analysis
type Report struct {
	Image      string                `json:"image" yaml:"image"`
	MIMEType   string                `json:"mime_type" yaml:"mime_type"`
	Notes      string                `json:"notes" yaml:"notes"`
	Analysis   models.AnalysisResult `json:"analysis" yaml:"analysis"`
	ExportedAt string                `json:"exported_at" yaml:"exported_at"`
}

// FromSnapshot builds a report from a successful snapshot
func FromSnapshot(s workflow.Snapshot) (*Report, error) {
	if s.State != workflow.Success || s.Result == nil {
		return nil, ErrNoResult
	}
	r := &Report{
		Notes:      s.Notes,
		Analysis:   *s.Result,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if s.Image != nil {
		r.Image = s.Image.Filename
		r.MIMEType = s.Image.MIMEType
	}
	return r, nil
}

// Marshal encodes the report as "json" or "yaml" and returns the matching content type
func Marshal(r *Report, format string) ([]byte, string, error) {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return data, "application/json", nil
	case "yaml", "yml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, "application/yaml", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}
}
