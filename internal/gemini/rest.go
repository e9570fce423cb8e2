package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"snakechat-backend/internal/models"
)

const DefaultAPIBase = "https://generativelanguage.googleapis.com/v1"

// RESTClient calls the Gemini REST API directly, passing the API key as the
// "key" query parameter.
type RESTClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewRESTClient creates a REST client. A nil httpClient gets a pooled client
// without an overall timeout; callers bound each call through the context.
func NewRESTClient(apiKey, baseURL string, httpClient *http.Client) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return &RESTClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

func (c *RESTClient) GenerateContent(ctx context.Context, model string, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(ModelID(model)) + ":generateContent"
	respBody, err := c.do(ctx, "generateContent", http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var out models.GenerateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode generateContent response: %w", err)
	}
	return &out, nil
}

func (c *RESTClient) ListModels(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "listModels", http.MethodGet, c.baseURL+"/models", nil)
}

func (c *RESTClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *RESTClient) do(ctx context.Context, op, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	q := httpReq.URL.Query()
	q.Set("key", c.apiKey)
	httpReq.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: stripURL(err)}
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

// stripURL drops the *url.Error wrapper, whose message embeds the full
// request URL including the key query parameter.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request failed: %w", uerr.Op, uerr.Err)
	}
	return err
}
