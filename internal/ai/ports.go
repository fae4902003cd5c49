package ai

import "context"

// VisionAnalyzer answers a free-text query about one image.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, query, imagePath string) (string, error)
}
