package services

import (
	"context"
	"log/slog"
	"strings"

	"snakechat-backend/internal/domain"
	"snakechat-backend/internal/metrics"
	"snakechat-backend/internal/models"
)

// RefusalAnswer is returned for questions outside the snake domain.
const RefusalAnswer = "ขออภัย บอทนี้ตอบเฉพาะเรื่องงูเท่านั้น"

// ChatService runs validation, the domain filter and answer synthesis for a
// single message.
type ChatService struct {
	filter    *domain.Filter
	synth     *Synthesizer
	selection Selection
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewChatService(filter *domain.Filter, synth *Synthesizer, selection Selection, m *metrics.Metrics, logger *slog.Logger) *ChatService {
	if filter == nil {
		filter = domain.NewFilter(domain.DefaultKeywords)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		filter:    filter,
		synth:     synth,
		selection: selection,
		metrics:   m,
		logger:    logger,
	}
}

func (s *ChatService) Selection() Selection {
	return s.selection
}

// Answer returns the reply for message. Empty messages fail validation and
// off-topic ones get RefusalAnswer; neither reaches Gemini.
func (s *ChatService) Answer(ctx context.Context, message string) (*models.ChatResponse, error) {
	question := strings.TrimSpace(message)
	if question == "" {
		s.metrics.ObserveChat(metrics.OutcomeInvalid)
		return nil, &ValidationError{Message: "message is required"}
	}

	if !s.filter.InDomain(question) {
		s.metrics.ObserveChat(metrics.OutcomeFiltered)
		return &models.ChatResponse{Answer: RefusalAnswer}, nil
	}

	model, answer, err := s.synth.GenerateWithFallback(ctx, BuildPrompt(question), s.selection.Candidates)
	if err != nil {
		s.metrics.ObserveChat(metrics.OutcomeError)
		return nil, err
	}

	s.metrics.ObserveChat(metrics.OutcomeAnswered)
	return &models.ChatResponse{Answer: answer, Model: model}, nil
}
