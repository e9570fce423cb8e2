package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"snakechat-backend/internal/gemini"
	"snakechat-backend/internal/metrics"
	"snakechat-backend/internal/models"
)

// SystemRules is sent ahead of every question.
const SystemRules = `คุณเป็นผู้ช่วยเฉพาะทางเรื่อง "งู" (ชนิดงู, พิษงู, การปฐมพยาบาลเมื่อถูกงูกัด)
- ตอบเฉพาะเรื่องที่เกี่ยวกับงูเท่านั้น
- ถ้าคำถามอยู่นอกขอบเขต ให้ตอบว่า "ขออภัย บอทนี้ตอบเฉพาะเรื่องงูเท่านั้น"
- ตอบเป็นภาษาไทย ให้เข้าใจง่าย กระชับ และข้อมูลถูกต้อง`

// QuestionLabel prefixes the user's text inside the prompt.
const QuestionLabel = "คำถามผู้ใช้: "

// FallbackAnswer replaces an upstream answer with no text.
const FallbackAnswer = "ขออภัย ไม่พบคำตอบที่ชัดเจน"

// BuildPrompt joins the rules and the labeled question with a blank line.
func BuildPrompt(question string) string {
	var b strings.Builder
	b.WriteString(SystemRules)
	b.WriteString("\n\n")
	b.WriteString(QuestionLabel)
	b.WriteString(question)
	return b.String()
}

// ExtractAnswer concatenates the text parts of the first candidate, in order
// and without a separator. A missing candidate, content or text yields
// FallbackAnswer.
func ExtractAnswer(resp *models.GenerateResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return FallbackAnswer
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return FallbackAnswer
	}

	var text strings.Builder
	for _, part := range content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return FallbackAnswer
	}
	return text.String()
}

type Synthesizer struct {
	client  gemini.Client
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSynthesizer creates a Synthesizer. timeout bounds each upstream call;
// zero means the caller's context alone decides.
func NewSynthesizer(client gemini.Client, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		client:  client,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Generate makes exactly one generateContent call for model.
func (s *Synthesizer) Generate(ctx context.Context, prompt, model string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.GenerateContent(ctx, model, models.NewTextRequest(prompt))
	s.metrics.ObserveUpstream(model, callResult(err), time.Since(start))
	if err != nil {
		return "", err
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != "" && cand.FinishReason != "STOP" {
			s.logger.Warn("gemini candidate stopped early", "candidate", i, "finish_reason", cand.FinishReason, "model", model)
		}
	}
	return ExtractAnswer(resp), nil
}

// GenerateWithFallback tries candidates in order. A model-unavailable failure
// moves on to the next candidate; any other failure is returned at once.
func (s *Synthesizer) GenerateWithFallback(ctx context.Context, prompt string, candidates []string) (model, text string, err error) {
	tried := make([]string, 0, len(candidates))
	var last error

	for _, m := range candidates {
		tried = append(tried, m)
		answer, genErr := s.Generate(ctx, prompt, m)
		if genErr == nil {
			return m, answer, nil
		}
		if !gemini.IsModelUnavailable(genErr) {
			return m, "", genErr
		}
		s.logger.Warn("model unavailable, trying next candidate", "model", m, "error", genErr)
		last = genErr
	}

	return "", "", &NoUsableModelError{Tried: tried, Last: last}
}

func callResult(err error) string {
	var te *gemini.TransportError
	switch {
	case err == nil:
		return metrics.ResultOK
	case gemini.IsModelUnavailable(err):
		return metrics.ResultUnavailable
	case errors.As(err, &te):
		return metrics.ResultTransport
	default:
		return metrics.ResultUpstream
	}
}
