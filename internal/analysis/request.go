package analysis

import (
	"fmt"

	"github.com/lehigh-university-libraries/radassist/internal/providers"
)

const (
	Temperature = 0.2

	SystemInstruction = `You are an expert radiologist AI assistant. Your role is to analyze medical imaging scans and provide a professional, structured report. Your analysis must be based solely on the provided image and clinical notes. IMPORTANT: Your output MUST be a valid JSON object that conforms to the provided schema. Do not include any text before or after the JSON object, including markdown code fences.`

	promptTemplate = `Analyze the attached medical scan. Clinical Context/User Query: "%s"`
)

// ResultSchema is the response contract every provider is asked to honour
func ResultSchema() *providers.Schema {
	return &providers.Schema{
		Type: "object",
		Properties: map[string]*providers.Schema{
			"diagnosis": {
				Type:        "string",
				Description: "A concise, primary diagnostic impression based on the scan. Limit to 1-2 sentences.",
			},
			"report": {
				Type:        "string",
				Description: "A detailed, structured breakdown of the findings. Use clear medical terminology. Describe normal and abnormal findings methodically.",
			},
			"actionPlan": {
				Type:        "string",
				Description: "Recommended next steps for the patient and clinician, presented as a list of actionable items (e.g., further imaging, lab tests, specialist referrals).",
			},
		},
		Required: []string{"diagnosis", "report", "actionPlan"},
	}
}

// BuildRequest assembles the inference request for one submission
func BuildRequest(encodedImage, mimeType, notes string) providers.Request {
	return providers.Request{
		Temperature:       Temperature,
		SystemInstruction: SystemInstruction,
		Prompt:            fmt.Sprintf(promptTemplate, notes),
		Images:            []providers.Image{{Data: encodedImage, MIMEType: mimeType}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ResultSchema(),
	}
}
