package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"snakechat-backend/internal/gemini"
	"snakechat-backend/internal/middleware"
	"snakechat-backend/internal/models"
)

// maxBodyBytes caps the /chat request body.
const maxBodyBytes = 64 << 10

type chatService interface {
	Answer(ctx context.Context, message string) (*models.ChatResponse, error)
}

type ChatHandler struct {
	chatService chatService
	client      gemini.Client
	logger      *slog.Logger
}

func NewChatHandler(chatService chatService, client gemini.Client, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		chatService: chatService,
		client:      client,
		logger:      logger,
	}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, validationResp("invalid request body"))
		return
	}

	resp, err := h.chatService.Answer(r.Context(), req.Message)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Models handles GET /models by relaying the upstream listing untouched.
func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.ListModels(r.Context())
	if err != nil {
		var ue *gemini.UpstreamError
		if errors.As(err, &ue) {
			h.logger.Error("gemini list models error", "request_id", middleware.GetRequestID(r.Context()), "status", ue.Status)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(ue.Status)
			w.Write(ue.Body)
			return
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// Health handles GET /health.
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{OK: true})
}
