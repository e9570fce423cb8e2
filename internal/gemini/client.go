// Package gemini talks to the Google Gemini generative-language API, either
// over plain REST or through the generative-ai-go SDK.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"snakechat-backend/internal/models"
)

// Client is the upstream collaborator used by the services layer.
type Client interface {
	// GenerateContent issues one generateContent call for model. Non-success
	// responses come back as *UpstreamError, network failures as *TransportError.
	GenerateContent(ctx context.Context, model string, req *models.GenerateRequest) (*models.GenerateResponse, error)
	// ListModels returns the raw capability listing body.
	ListModels(ctx context.Context) ([]byte, error)
	Close() error
}

// ParseModelList decodes a capability listing body.
func ParseModelList(raw []byte) (*models.ModelList, error) {
	var list models.ModelList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to decode model listing: %w", err)
	}
	return &list, nil
}

// ModelID strips the "models/" resource prefix from a model name.
func ModelID(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "models/")
}

// SupportsGenerate reports whether a listed model can serve generateContent.
// Entries that do not advertise their methods are assumed to.
func SupportsGenerate(m models.ModelInfo) bool {
	if len(m.SupportedGenerationMethods) == 0 {
		return true
	}
	for _, method := range m.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}
