package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"snakechat-backend/internal/models"
)

// SDKClient is the generative-ai-go backed Client.
type SDKClient struct {
	client *genai.Client
}

func NewSDKClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*SDKClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &SDKClient{client: client}, nil
}

func (c *SDKClient) GenerateContent(ctx context.Context, model string, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	var parts []genai.Part
	for _, content := range req.Contents {
		for _, p := range content.Parts {
			parts = append(parts, genai.Text(p.Text))
		}
	}

	resp, err := c.client.GenerativeModel(ModelID(model)).GenerateContent(ctx, parts...)
	if err != nil {
		// The SDK reports safety blocks as errors; the REST API returns them as
		// a 200 without text, which ends in the fallback answer.
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return fromSDKResponse(resp), nil
		}
		return nil, fromSDKError("generateContent", err)
	}
	return fromSDKResponse(resp), nil
}

func (c *SDKClient) ListModels(ctx context.Context) ([]byte, error) {
	list := models.ModelList{Models: []models.ModelInfo{}}
	it := c.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fromSDKError("listModels", err)
		}
		list.Models = append(list.Models, models.ModelInfo{
			Name:                       m.Name,
			DisplayName:                m.DisplayName,
			Description:                m.Description,
			InputTokenLimit:            m.InputTokenLimit,
			OutputTokenLimit:           m.OutputTokenLimit,
			SupportedGenerationMethods: m.SupportedGenerationMethods,
		})
	}
	return json.Marshal(list)
}

func (c *SDKClient) Close() error {
	return c.client.Close()
}

func fromSDKResponse(resp *genai.GenerateContentResponse) *models.GenerateResponse {
	out := &models.GenerateResponse{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		c := models.Candidate{FinishReason: cand.FinishReason.String()}
		if cand.Content != nil {
			content := &models.Content{Role: cand.Content.Role}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					content.Parts = append(content.Parts, models.Part{Text: string(t)})
				}
			}
			c.Content = content
		}
		out.Candidates = append(out.Candidates, c)
	}
	return out
}

// fromSDKError maps SDK failures onto the same taxonomy the REST client uses.
func fromSDKError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := []byte(gerr.Body)
		if len(body) == 0 {
			body, _ = json.Marshal(map[string]any{
				"error": map[string]any{
					"code":    gerr.Code,
					"message": gerr.Message,
					"status":  statusReason(gerr.Code),
				},
			})
		}
		return &UpstreamError{Status: gerr.Code, Body: body}
	}
	return &TransportError{Op: op, Err: err}
}

func statusReason(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "PERMISSION_DENIED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusTooManyRequests:
		return "RESOURCE_EXHAUSTED"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}
