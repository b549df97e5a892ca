package providers

import (
	"context"
)

// Schema is a provider-neutral description of the JSON the model must return
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Image is an inline image part carried as base64
type Image struct {
	Data     string
	MIMEType string
}

// Request represents everything a provider needs for one generation
type Request struct {
	Model             string
	Temperature       float64
	SystemInstruction string
	Prompt            string
	Images            []Image
	ResponseMIMEType  string
	ResponseSchema    *Schema
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
