// Package analysis extracts bibliographic fields from a photographed book
// cover with a single multimodal inference call. Stateless, one call per
// request, no retries; a transient upstream failure surfaces immediately.
package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ExtractionPrompt asks the model for title, author and category as bare
// JSON. Markdown is forbidden because fenced replies still happen and have
// to be stripped before parsing.
const ExtractionPrompt = `この本の表紙から本のタイトルと著者名を抽出してください。できるだけ正確に文字を認識してください。カテゴリーは次の中から1つ選んでください: ビジネス、テクノロジー、小説、自己啓発、歴史、科学、その他。以下のJSON形式で返してください(マークダウンは使わないでください): {"title": "タイトル", "author": "著者名", "category": "カテゴリー"}`

// ErrInvalidImage means the request payload was not decodable base64.
var ErrInvalidImage = fmt.Errorf("image_base64 is not valid base64 data")

// Result is the extracted cover information. Category stays nil when the
// model does not supply one; title and author are mandatory.
type Result struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Category *string `json:"category"`
}

// VisionClient abstracts the multimodal inference call so tests can stub it.
type VisionClient interface {
	AnalyzeImage(ctx context.Context, prompt string, image []byte) (string, error)
}

// Analyzer turns a base64 cover photo into a Result.
type Analyzer struct {
	vision VisionClient
}

// NewAnalyzer creates an Analyzer using vision for inference.
func NewAnalyzer(vision VisionClient) *Analyzer {
	return &Analyzer{vision: vision}
}

// Analyze decodes imageBase64, submits it for extraction and parses the
// model's reply. Error classes: ErrInvalidImage for a bad payload,
// *UpstreamError for a failed inference call, *ParseError for a reply that
// does not contain well-formed book info.
func (a *Analyzer) Analyze(ctx context.Context, imageBase64 string) (*Result, error) {
	image, err := DecodeImage(imageBase64)
	if err != nil {
		return nil, err
	}

	raw, err := a.vision.AnalyzeImage(ctx, ExtractionPrompt, image)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	if raw == "" {
		return nil, &ParseError{Detail: "no content in response"}
	}

	result, err := ParseResult(raw)
	if err != nil {
		return nil, err
	}

	// Covers are frequently Japanese; normalize so equal-looking strings
	// compare equal downstream.
	result.Title = norm.NFC.String(result.Title)
	result.Author = norm.NFC.String(result.Author)
	if result.Category != nil {
		category := norm.NFC.String(*result.Category)
		result.Category = &category
	}
	return result, nil
}

// DecodeImage decodes a base64 payload, accepting both raw base64 and
// data-URL form (data:image/jpeg;base64,...). Both forms of the same bytes
// decode identically.
func DecodeImage(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}
