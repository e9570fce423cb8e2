package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakechat-backend/internal/domain"
	"snakechat-backend/internal/gemini"
	"snakechat-backend/internal/middleware"
	"snakechat-backend/internal/models"
	"snakechat-backend/internal/services"
)

const testAPIKey = "test-secret-key"

// stubUpstream is a fake Gemini REST API that records every call.
type stubUpstream struct {
	mu       sync.Mutex
	calls    []string
	prompts  []string
	status   map[string]int
	body     map[string]string
	fallback string
}

func (s *stubUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/models" {
		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-2.5-flash","supportedGenerationMethods":["generateContent"]}]}`))
		return
	}

	model := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/models/"), ":generateContent")
	s.calls = append(s.calls, model)

	var req models.GenerateRequest
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &req)
	if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
		s.prompts = append(s.prompts, req.Contents[0].Parts[0].Text)
	}

	if code, ok := s.status[model]; ok {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(s.body[model]))
		return
	}
	_, _ = w.Write([]byte(s.fallback))
}

func (s *stubUpstream) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestHandler(t *testing.T, upstream *stubUpstream, candidates ...string) *ChatHandler {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	if len(candidates) == 0 {
		candidates = []string{services.DefaultModel}
	}
	client := gemini.NewRESTClient(testAPIKey, server.URL, nil)
	synth := services.NewSynthesizer(client, 5*time.Second, nil, nil)
	sel := services.Selection{Active: candidates[0], Candidates: candidates}
	svc := services.NewChatService(domain.NewFilter(domain.DefaultKeywords), synth, sel, nil, nil)
	return NewChatHandler(svc, client, nil)
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	middleware.RequestID(http.HandlerFunc(h.Chat)).ServeHTTP(rr, req)
	return rr
}

func TestChatHandler_InDomainQuestion(t *testing.T) {
	upstream := &stubUpstream{fallback: `{"candidates":[{"content":{"parts":[{"text":"งูเห่ามี"},{"text":"พิษต่อระบบประสาท"}]}}]}`}
	h := newTestHandler(t, upstream)

	rr := postChat(t, h, `{"message": "งูเห่ามีพิษอะไร"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.ChatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "งูเห่ามีพิษต่อระบบประสาท", resp.Answer)
	assert.Equal(t, services.DefaultModel, resp.Model)

	require.Equal(t, 1, upstream.callCount())
	assert.Contains(t, upstream.prompts[0], services.SystemRules)
	assert.Contains(t, upstream.prompts[0], "งูเห่ามีพิษอะไร")
}

func TestChatHandler_OutOfDomainQuestion(t *testing.T) {
	upstream := &stubUpstream{fallback: `{}`}
	h := newTestHandler(t, upstream)

	rr := postChat(t, h, `{"message": "What is the capital of France?"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, services.RefusalAnswer, resp["answer"])
	assert.NotContains(t, resp, "model")
	assert.Zero(t, upstream.callCount())
}

func TestChatHandler_MissingMessage(t *testing.T) {
	for _, body := range []string{`{}`, `{"message": "   "}`, ``} {
		upstream := &stubUpstream{}
		h := newTestHandler(t, upstream)

		rr := postChat(t, h, body)

		require.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
		var resp map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "message is required", resp["error"])
		assert.Zero(t, upstream.callCount())
	}
}

func TestChatHandler_MalformedBody(t *testing.T) {
	upstream := &stubUpstream{}
	h := newTestHandler(t, upstream)

	rr := postChat(t, h, `{"message": `)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, upstream.callCount())
}

func TestChatHandler_EmptyUpstreamAnswer(t *testing.T) {
	upstream := &stubUpstream{fallback: `{"candidates":[]}`}
	h := newTestHandler(t, upstream)

	rr := postChat(t, h, `{"message": "snake"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.ChatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, services.FallbackAnswer, resp.Answer)
}

func TestChatHandler_UpstreamErrorPassthrough(t *testing.T) {
	upstreamBody := `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`
	upstream := &stubUpstream{
		status: map[string]int{"m1": http.StatusTooManyRequests},
		body:   map[string]string{"m1": upstreamBody},
	}
	h := newTestHandler(t, upstream, "m1", "m2")

	rr := postChat(t, h, `{"message": "cobra"}`)

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	var resp struct {
		Error struct {
			Status  int             `json:"status"`
			Message string          `json:"message"`
			Raw     json.RawMessage `json:"raw"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, http.StatusTooManyRequests, resp.Error.Status)
	assert.Equal(t, "Quota exceeded", resp.Error.Message)
	assert.JSONEq(t, upstreamBody, string(resp.Error.Raw))
	assert.Equal(t, 1, upstream.callCount(), "quota errors must not fall through to other models")
}

func TestChatHandler_ModelFallback(t *testing.T) {
	notFound := `{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`
	upstream := &stubUpstream{
		status:   map[string]int{"m1": http.StatusNotFound, "m2": http.StatusNotFound},
		body:     map[string]string{"m1": notFound, "m2": notFound},
		fallback: `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`,
	}
	h := newTestHandler(t, upstream, "m1", "m2", "m3")

	rr := postChat(t, h, `{"message": "krait"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.ChatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "m3", resp.Model)
	assert.Equal(t, []string{"m1", "m2", "m3"}, upstream.calls)
}

func TestChatHandler_NoUsableModel(t *testing.T) {
	notFound := `{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`
	upstream := &stubUpstream{
		status: map[string]int{"m1": http.StatusNotFound},
		body:   map[string]string{"m1": notFound},
	}
	h := newTestHandler(t, upstream, "m1")

	rr := postChat(t, h, `{"message": "viper"}`)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, []string{"m1"}, resp.Error.Tried)
}

func TestChatHandler_TransportErrorIsSanitized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := gemini.NewRESTClient(testAPIKey, url, nil)
	synth := services.NewSynthesizer(client, time.Second, nil, nil)
	svc := services.NewChatService(nil, synth, services.Selection{Candidates: []string{"m1"}}, nil, nil)
	h := NewChatHandler(svc, client, nil)

	rr := postChat(t, h, `{"message": "venom"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":{"status":500,"message":"Server error"}}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), testAPIKey)
}

func TestChatHandler_Models(t *testing.T) {
	upstream := &stubUpstream{}
	h := newTestHandler(t, upstream)

	rr := httptest.NewRecorder()
	h.Models(rr, httptest.NewRequest(http.MethodGet, "/models", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "models/gemini-2.5-flash")
}

func TestChatHandler_ModelsUpstreamError(t *testing.T) {
	body := `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := gemini.NewRESTClient(testAPIKey, server.URL, nil)
	h := NewChatHandler(nil, client, nil)

	rr := httptest.NewRecorder()
	h.Models(rr, httptest.NewRequest(http.MethodGet, "/models", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, body, rr.Body.String())
}

func TestChatHandler_Health(t *testing.T) {
	h := NewChatHandler(nil, nil, nil)

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}
