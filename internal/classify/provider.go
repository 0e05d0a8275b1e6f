package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Gemini generateContent REST API and asks it
// to emit the structured issue fields as JSON.
type GeminiProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGeminiProvider builds a provider. The endpoint parameter exists
// for tests; pass "" for the public API.
func NewGeminiProvider(apiKey, model, endpoint string, timeout time.Duration) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GeminiProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

const analysisPrompt = `Analyze this municipal issue report and respond with a single JSON object, no markdown, with exactly these keys:
"category": one of ["Roads & Transport","Water & Drainage","Electricity & Streetlights","Sanitation & Waste","Public Health & Safety","Environment & Parks","Building & Infrastructure","Taxes & Documentation","Emergency Services","Animal Care & Control","Other"]
"title": a concise title for the issue
"description": a basic 2-line description
"address": the address or location mentioned in the report
"urgency": one of ["low","medium","high"]

Report: %s`

// Analyze sends the report text to the model and parses the structured
// response. Callers own the timeout via ctx.
func (p *GeminiProvider) Analyze(ctx context.Context, text string) (*Analysis, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(analysisPrompt, text)}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.endpoint, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("provider response carried no candidates")
	}

	raw := stripCodeFences(parsed.Candidates[0].Content.Parts[0].Text)
	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("provider emitted non-JSON analysis: %w", err)
	}
	return &analysis, nil
}

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes
// adds despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
