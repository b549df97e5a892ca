package models

import "time"

// UploadedImage represents a scan accepted from the browser
type UploadedImage struct {
	Filename   string    `json:"filename"`
	MIMEType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`

	// Data holds the raw bytes for previews; Encoded is the base64 form sent to the model.
	Data    []byte `json:"-"`
	Encoded string `json:"-"`
}

// DataURL returns the image as a data: URL suitable for an <img> src
func (i *UploadedImage) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Encoded
}

// AnalysisResult is the structured report returned by the model
type AnalysisResult struct {
	Diagnosis  string `json:"diagnosis" yaml:"diagnosis"`
	Report     string `json:"report" yaml:"report"`
	ActionPlan string `json:"actionPlan" yaml:"actionPlan"`
}
