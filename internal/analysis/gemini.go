package analysis

import (
	"context"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used for cover extraction
	DefaultModel = "gemini-2.5-flash"
	// maxOutputTokens bounds the reply; the expected JSON is tiny
	maxOutputTokens = 300
)

// GeminiVisionClient implements VisionClient using the Gemini API
type GeminiVisionClient struct {
	client *genai.Client
	model  string
}

// NewGeminiVisionClient creates a new GeminiVisionClient
func NewGeminiVisionClient(client *genai.Client, model string) *GeminiVisionClient {
	return &GeminiVisionClient{
		client: client,
		model:  model,
	}
}

// AnalyzeImage sends one user turn with the instruction prompt and the JPEG
// bytes, requesting high media resolution for legible cover text.
func (c *GeminiVisionClient) AnalyzeImage(ctx context.Context, prompt string, image []byte) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
		MediaResolution: genai.MediaResolutionHigh,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: image}},
			},
		},
	}, config)
	if err != nil {
		return "", err
	}

	// Extract text from response
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}

	return "", nil
}
