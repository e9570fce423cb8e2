package models

// Gemini REST wire types. Only the fields this service reads are declared.

type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text,omitempty"`
}

type GenerateResponse struct {
	Candidates []Candidate `json:"candidates,omitempty"`
}

type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// ModelInfo is one entry of the models listing.
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	Description                string   `json:"description,omitempty"`
	InputTokenLimit            int32    `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit           int32    `json:"outputTokenLimit,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
}

type ModelList struct {
	Models []ModelInfo `json:"models"`
}

// NewTextRequest builds a single-turn user request with one text part.
func NewTextRequest(text string) *GenerateRequest {
	return &GenerateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: text}}},
		},
	}
}
