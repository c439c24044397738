package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-tutor/internal/domain"
)

// Params son los parametros de generacion aceptados por el backend de imagenes.
type Params struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
}

// ApplyDefaults completa los parametros no especificados por el caller.
func (p *Params) ApplyDefaults() {
	if p.Width <= 0 {
		p.Width = 1024
	}
	if p.Height <= 0 {
		p.Height = 1024
	}
	if p.Steps <= 0 {
		p.Steps = 28
	}
	if p.GuidanceScale <= 0 {
		p.GuidanceScale = 4.5
	}
}

// Generator define la interfaz contra el backend de generacion de imagenes.
type Generator interface {
	GenerateImage(ctx context.Context, params Params) (domain.ImageResult, error)
}

// APIError es un fallo HTTP del backend de imagenes.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("image backend error: status=%d message=%s", e.StatusCode, e.Message)
}

// RateLimited indica si el backend señalo cuota agotada.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// HTTPClient implementa Generator contra un backend HTTP de difusion.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHTTPClient construye el cliente del backend de imagenes.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Model devuelve el identificador de modelo configurado.
func (c *HTTPClient) Model() string {
	return c.model
}

// Configured indica si hay backend de imagenes disponible.
func (c *HTTPClient) Configured() bool {
	return c != nil && c.baseURL != ""
}

func (c *HTTPClient) GenerateImage(ctx context.Context, params Params) (domain.ImageResult, error) {
	if !c.Configured() {
		return domain.ImageResult{}, fmt.Errorf("image backend not configured")
	}
	params.ApplyDefaults()

	reqBody := struct {
		Params
		Model string `json:"model"`
	}{Params: params, Model: c.model}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.ImageResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.ImageResult{}, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ImageResult{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ImageResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := string(respBody)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return domain.ImageResult{}, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var ir struct {
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	if err := json.Unmarshal(respBody, &ir); err != nil {
		return domain.ImageResult{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if ir.ImageBase64 == "" {
		return domain.ImageResult{}, fmt.Errorf("image backend empty response")
	}
	if ir.MimeType == "" {
		ir.MimeType = "image/png"
	}

	return domain.ImageResult{
		ImageBase64: ir.ImageBase64,
		MimeType:    ir.MimeType,
		Prompt:      params.Prompt,
		Model:       c.model,
	}, nil
}
