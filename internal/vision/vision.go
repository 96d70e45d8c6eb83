package vision

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Reply is the raw text a vision model returned for one screenshot.
type Reply struct {
	Text  string
	Model string
	Usage Usage
}

// Analyzer sends a single screenshot to a vision model.
type Analyzer interface {
	// Analyze returns the unparsed reply text for one image.
	Analyze(ctx context.Context, imageData []byte, mimeType string) (*Reply, error)
}

// DetectMIMEType identifies the image type from its bytes, falling back to
// the file extension when the content is not a recognized image.
func DetectMIMEType(path string, data []byte) string {
	if len(data) > 0 {
		if detected := mimetype.Detect(data).String(); strings.HasPrefix(detected, "image/") {
			return detected
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func calculateCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
