package models

import "encoding/json"

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the chat endpoint. Model is empty when the
// question was answered locally without contacting Gemini.
type ChatResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model,omitempty"`
}

// API Error responses

// ValidationErrorResponse is returned for malformed or missing input.
type ValidationErrorResponse struct {
	Error string `json:"error"`
}

// APIError describes a failure while producing an answer.
type APIError struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"raw,omitempty"`
	Tried   []string        `json:"tried,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK bool `json:"ok"`
}
