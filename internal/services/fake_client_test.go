package services

import (
	"context"
	"sync"

	"snakechat-backend/internal/models"
)

type generateCall struct {
	model  string
	prompt string
}

// fakeClient is an in-memory gemini.Client. Per-model errors take precedence
// over the shared response.
type fakeClient struct {
	mu        sync.Mutex
	calls     []generateCall
	resp      *models.GenerateResponse
	errs      map[string]error
	listing   []byte
	listErr   error
	listCalls int
}

func (f *fakeClient) GenerateContent(ctx context.Context, model string, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prompt := ""
	if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
		prompt = req.Contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, generateCall{model: model, prompt: prompt})

	if err, ok := f.errs[model]; ok {
		return nil, err
	}
	if f.resp == nil {
		return &models.GenerateResponse{}, nil
	}
	return f.resp, nil
}

func (f *fakeClient) ListModels(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.listing, f.listErr
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) callModels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.model
	}
	return out
}

func textResponse(parts ...string) *models.GenerateResponse {
	content := &models.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, models.Part{Text: p})
	}
	return &models.GenerateResponse{Candidates: []models.Candidate{{Content: content, FinishReason: "STOP"}}}
}
