package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const completionTimeout = 120 * time.Second

var _ VisionAnalyzer = (*Service)(nil)

type Service struct {
	client *OpenAIClient
	model  string
	log    *zap.Logger
}

func NewService(client *OpenAIClient, model string, log *zap.Logger) *Service {
	if model == "" {
		model = DefaultVisionModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client: client,
		model:  model,
		log:    log.Named("vision"),
	}
}

// Analyze sends one user message holding the query and the image.
func (s *Service) Analyze(ctx context.Context, query, imagePath string) (string, error) {
	start := time.Now()

	imageURL, err := imageDataURL(imagePath)
	if err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: query},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
				},
			},
		},
	}

	ctxGPT, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	reply, err := s.client.GetCompletion(ctxGPT, messages, s.model)
	if err != nil {
		s.log.Error("completion failed",
			zap.String("model", s.model),
			zap.String("diagnosis", diagnose(err)),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("vision completion: %w", err)
	}

	s.log.Info("completion done",
		zap.String("model", s.model),
		zap.Duration("took", time.Since(start)))
	return strings.TrimSpace(reply), nil
}

// diagnose maps provider failures to something an operator can act on.
func diagnose(err error) string {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty completion"
	}

	switch {
	case status == http.StatusUnauthorized:
		return "invalid API key"
	case status == http.StatusNotFound:
		return "model not found"
	case status == http.StatusTooManyRequests:
		return "rate limited"
	case status == http.StatusBadRequest:
		return "malformed request"
	case status >= 500:
		return "provider internal error"
	}
	return "unknown"
}
