package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"snakechat-backend/internal/gemini"
	"snakechat-backend/internal/middleware"
	"snakechat-backend/internal/models"
	"snakechat-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func validationResp(message string) models.ValidationErrorResponse {
	return models.ValidationErrorResponse{Error: message}
}

func errorResp(status int, message string) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{Status: status, Message: message},
	}
}

// rawJSON returns body when it is valid JSON, otherwise body as a JSON string.
func rawJSON(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

// handleServiceError maps the error taxonomy to a response. Failures other
// than validation are logged with the request id.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var (
		ve *services.ValidationError
		nu *services.NoUsableModelError
		ue *gemini.UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationResp(ve.Message))
	case errors.As(err, &nu):
		logger.Error("no usable gemini model", "request_id", requestID, "tried", nu.Tried, "error", err)
		resp := errorResp(http.StatusServiceUnavailable, "No usable model")
		resp.Error.Tried = nu.Tried
		if errors.As(nu.Last, &ue) {
			resp.Error.Raw = rawJSON(ue.Body)
		}
		writeJSON(w, http.StatusServiceUnavailable, resp)
	case errors.As(err, &ue):
		logger.Error("gemini API error", "request_id", requestID, "status", ue.Status, "body", string(ue.Body))
		resp := errorResp(ue.Status, ue.Message())
		resp.Error.Raw = rawJSON(ue.Body)
		writeJSON(w, ue.Status, resp)
	default:
		logger.Error("chat request failed", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp(http.StatusInternalServerError, "Server error"))
	}
}
