// Package genai is a lightweight facade over the Generative Language API so
// the gateways and the video orchestrator can focus on translating domain
// requests into API calls. It covers three call shapes: structured JSON
// generation, long-running video generation, and authenticated file download.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"promovideo/internal/infra"
)

// CredentialSource supplies the current API key. The capability gate
// implements this so a forgotten credential takes effect immediately.
type CredentialSource interface {
	Credential() string
}

type staticKey string

func (s staticKey) Credential() string { return string(s) }

// Options controls how the client is configured.
type Options struct {
	// APIKey is used when Credentials is nil.
	APIKey      string
	Credentials CredentialSource
	BaseURL     string
	Model       string
	VideoModel  string
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Client issues requests against the Generative Language API.
type Client struct {
	creds      CredentialSource
	baseURL    string
	model      string
	videoModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// APIError is a decoded error payload from the API. The orchestrator uses
// the HTTP status and API status string to classify terminal failures.
type APIError struct {
	HTTPStatus int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini status %d (%s): %s", e.HTTPStatus, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("gemini status %d: %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("gemini status %d", e.HTTPStatus)
}

// IsQuota reports whether err is a rate-limit or resource-exhaustion error.
func IsQuota(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HTTPStatus == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
}

// IsInvalidCredential reports whether err indicates the supplied API key is
// not recognized.
func IsInvalidCredential(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.HTTPStatus == http.StatusForbidden || apiErr.Status == "PERMISSION_DENIED" {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return apiErr.HTTPStatus == http.StatusBadRequest && strings.Contains(msg, "api key not valid")
}

// NewClient constructs a client with sane defaults. Callers may provide a nil
// HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	videoModel := opts.VideoModel
	if videoModel == "" {
		videoModel = "veo-2.0-generate-001"
	}

	creds := opts.Credentials
	if creds == nil {
		creds = staticKey(strings.TrimSpace(opts.APIKey))
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		creds:      creds,
		baseURL:    baseURL,
		model:      model,
		videoModel: videoModel,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the configured text model identifier.
func (c *Client) Model() string { return c.model }

// VideoModel returns the configured video model identifier.
func (c *Client) VideoModel() string { return c.videoModel }

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts,omitempty"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// GenerateJSON sends a single-turn prompt in JSON mode and unmarshals the
// first candidate's text into out.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, out any) error {
	payload := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
		GenerationConfig: &generationConfig{
			Temperature:      0.7,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}

	var resp generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return err
	}

	text := firstCandidateText(resp)
	if text == "" {
		return fmt.Errorf("no content returned")
	}
	if err := json.Unmarshal([]byte(stripJSONFence(text)), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// InlineImage is an image payload submitted inline with a request.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// VideoGenerationRequest describes one video job submission. Exactly one of
// Image (single-image mode) or ReferenceImages (multi-image-asset mode) is
// set; the orchestrator decides which.
type VideoGenerationRequest struct {
	Prompt          string
	AspectRatio     string
	Image           *InlineImage
	ReferenceImages []InlineImage
}

type videoInstance struct {
	Prompt          string               `json:"prompt"`
	Image           *inlineImageJSON     `json:"image,omitempty"`
	ReferenceImages []referenceImageJSON `json:"referenceImages,omitempty"`
}

type inlineImageJSON struct {
	BytesBase64Encoded []byte `json:"bytesBase64Encoded"`
	MIMEType           string `json:"mimeType"`
}

type referenceImageJSON struct {
	Image         inlineImageJSON `json:"image"`
	ReferenceType string          `json:"referenceType"`
}

type predictLongRunningRequest struct {
	Instances  []videoInstance `json:"instances"`
	Parameters struct {
		AspectRatio string `json:"aspectRatio,omitempty"`
	} `json:"parameters"`
}

type operationName struct {
	Name string `json:"name"`
}

// Operation is the polled state of a long-running video job.
type Operation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Error    *struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
}

// VideoURI returns the artifact locator of the first generated sample, or the
// empty string when the operation carries none.
func (op *Operation) VideoURI() string {
	if op.Response == nil {
		return ""
	}
	samples := op.Response.GenerateVideoResponse.GeneratedSamples
	if len(samples) == 0 {
		return ""
	}
	return samples[0].Video.URI
}

// Err converts an operation-level error payload into an *APIError.
func (op *Operation) Err() error {
	if op.Error == nil {
		return nil
	}
	return &APIError{HTTPStatus: op.Error.Code, Status: op.Error.Status, Message: op.Error.Message}
}

// StartVideoGeneration submits a video job and returns the opaque operation
// handle used to poll its status.
func (c *Client) StartVideoGeneration(ctx context.Context, req VideoGenerationRequest) (string, error) {
	instance := videoInstance{Prompt: req.Prompt}
	if req.Image != nil {
		instance.Image = &inlineImageJSON{BytesBase64Encoded: req.Image.Data, MIMEType: req.Image.MIMEType}
	}
	for _, ref := range req.ReferenceImages {
		instance.ReferenceImages = append(instance.ReferenceImages, referenceImageJSON{
			Image:         inlineImageJSON{BytesBase64Encoded: ref.Data, MIMEType: ref.MIMEType},
			ReferenceType: "asset",
		})
	}

	var payload predictLongRunningRequest
	payload.Instances = []videoInstance{instance}
	payload.Parameters.AspectRatio = req.AspectRatio

	var op operationName
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.videoModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &op); err != nil {
		return "", err
	}
	if op.Name == "" {
		return "", fmt.Errorf("no operation handle returned")
	}

	c.logger.Debug().Str("operation", op.Name).Str("model", c.videoModel).Msg("genai: video generation started")
	return op.Name, nil
}

// Operation fetches the current state of a long-running job by its handle.
func (c *Client) Operation(ctx context.Context, name string) (*Operation, error) {
	var op Operation
	if err := c.invoke(ctx, http.MethodGet, "/"+strings.TrimLeft(name, "/"), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Download fetches artifact bytes from a locator, appending the API key when
// the locator points at the API host.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if key := c.creds.Credential(); key != "" {
		q := req.URL.Query()
		q.Set("key", key)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", decodeAPIError(resp)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read artifact: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if key := c.creds.Credential(); key != "" {
		q := req.URL.Query()
		q.Set("key", key)
		req.URL.RawQuery = q.Encode()
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{HTTPStatus: resp.StatusCode}
	data, _ := io.ReadAll(resp.Body)
	var decoded apiErrorResponse
	if err := json.Unmarshal(data, &decoded); err == nil && decoded.Error.Message != "" {
		apiErr.Status = decoded.Error.Status
		apiErr.Message = decoded.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}

func firstCandidateText(resp generateContentResponse) string {
	for _, candidate := range resp.Candidates {
		for _, p := range candidate.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text
			}
		}
	}
	return ""
}

func stripJSONFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
