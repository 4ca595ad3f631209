package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	VideoModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin facade over the Gemini REST surface: generateContent for
// image editing and synthesis, and predictLongRunning plus operation polling
// for video jobs. It performs no retries; callers own retry policy.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	videoModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// Part is one ordered element of a generateContent request. Exactly one of
// Text or inline image data is set.
type Part struct {
	Text       string
	InlineMIME string
	InlineData string // base64 payload
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline-data part from a decoded image payload.
func ImagePart(p domain.ImagePayload) Part {
	mime := p.MimeType
	if mime == "" {
		mime = domain.DefaultImageMIME
	}
	return Part{InlineMIME: mime, InlineData: p.Base64}
}

// ContentRequest is a single generateContent invocation. Part order is
// forwarded to the API exactly as given.
type ContentRequest struct {
	Parts       []Part
	AspectRatio domain.AspectRatio
}

// ContentResult is the normalized generateContent outcome: an inline image,
// accompanying commentary text, or both.
type ContentResult struct {
	ImageBase64 string
	ImageMIME   string
	Text        string
}

// VideoStartRequest submits a long-running video generation job.
type VideoStartRequest struct {
	Prompt      string
	Image       *domain.ImagePayload
	AspectRatio domain.AspectRatio
}

// VideoOperation is a snapshot of a long-running video job.
type VideoOperation struct {
	Name     string
	Done     bool
	VideoURI string
	Err      *APIError
}

// APIError is the provider's structured error envelope. Status carries the
// google.rpc code name (RESOURCE_EXHAUSTED and friends) when present.
type APIError struct {
	HTTPStatus int
	Code       int
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

// BlockedError reports a safety refusal, enumerating the blocked categories
// when the response names them.
type BlockedError struct {
	Reason     string
	Categories []string
}

func (e *BlockedError) Error() string {
	if len(e.Categories) == 0 {
		return fmt.Sprintf("request blocked: %s", e.Reason)
	}
	return fmt.Sprintf("request blocked (%s): %s", e.Reason, strings.Join(e.Categories, ", "))
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiSafetyRating struct {
	Category    string `json:"category,omitempty"`
	Probability string `json:"probability,omitempty"`
	Blocked     bool   `json:"blocked,omitempty"`
}

type geminiCandidate struct {
	Content       geminiContent        `json:"content"`
	FinishReason  string               `json:"finishReason,omitempty"`
	SafetyRatings []geminiSafetyRating `json:"safetyRatings,omitempty"`
}

type geminiPromptFeedback struct {
	BlockReason   string               `json:"blockReason,omitempty"`
	SafetyRatings []geminiSafetyRating `json:"safetyRatings,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

type veoInstanceImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

type veoInstance struct {
	Prompt string            `json:"prompt"`
	Image  *veoInstanceImage `json:"image,omitempty"`
}

type veoParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type veoPredictRequest struct {
	Instances  []veoInstance  `json:"instances"`
	Parameters *veoParameters `json:"parameters,omitempty"`
}

type veoOperationResponse struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Error    *struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
	Response *struct {
		GenerateVideoResponse *struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri,omitempty"`
				} `json:"video"`
			} `json:"generatedSamples,omitempty"`
		} `json:"generateVideoResponse,omitempty"`
	} `json:"response,omitempty"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	videoModel := opts.VideoModel
	if videoModel == "" {
		videoModel = "veo-2.0-generate-001"
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
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		imageModel: imageModel,
		videoModel: videoModel,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ImageModel returns the configured image model identifier.
func (c *Client) ImageModel() string {
	return c.imageModel
}

// GenerateContent invokes the image model with the given ordered parts and
// returns the first inline image plus any accompanying text. A safety block
// surfaces as *BlockedError.
func (c *Client) GenerateContent(ctx context.Context, req ContentRequest) (*ContentResult, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: wireParts(req.Parts)}},
	}
	if req.AspectRatio != "" {
		payload.GenerationConfig = &geminiGenerationConfig{
			ImageConfig: &geminiImageConfig{AspectRatio: string(req.AspectRatio)},
		}
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.imageModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &response); err != nil {
		return nil, err
	}

	if blocked := blockedFromResponse(&response); blocked != nil {
		return nil, blocked
	}

	result := &ContentResult{}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" && result.ImageBase64 == "" {
				result.ImageBase64 = part.InlineData.Data
				result.ImageMIME = part.InlineData.MimeType
			}
			if part.Text != "" {
				if result.Text != "" {
					result.Text += "\n"
				}
				result.Text += part.Text
			}
		}
	}

	c.logger.Debug().
		Str("model", c.imageModel).
		Bool("has_image", result.ImageBase64 != "").
		Bool("has_text", result.Text != "").
		Msg("genai: generateContent complete")

	return result, nil
}

// GenerateImage synthesizes a single image from text at the given aspect
// ratio, with no input image or mask.
func (c *Client) GenerateImage(ctx context.Context, prompt string, aspect domain.AspectRatio) (*ContentResult, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &geminiImageConfig{AspectRatio: string(aspect)},
		},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.imageModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &response); err != nil {
		return nil, err
	}
	if blocked := blockedFromResponse(&response); blocked != nil {
		return nil, blocked
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return &ContentResult{ImageBase64: part.InlineData.Data, ImageMIME: part.InlineData.MimeType}, nil
			}
		}
	}
	return &ContentResult{}, nil
}

// StartVideoOperation submits a long-running video job and returns the
// operation name to poll.
func (c *Client) StartVideoOperation(ctx context.Context, req VideoStartRequest) (string, error) {
	instance := veoInstance{Prompt: req.Prompt}
	if req.Image != nil && !req.Image.IsZero() {
		instance.Image = &veoInstanceImage{
			BytesBase64Encoded: req.Image.Base64,
			MimeType:           req.Image.MimeType,
		}
	}
	payload := veoPredictRequest{
		Instances:  []veoInstance{instance},
		Parameters: &veoParameters{AspectRatio: string(req.AspectRatio)},
	}

	var op veoOperationResponse
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.videoModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &op); err != nil {
		return "", err
	}
	if op.Name == "" {
		return "", fmt.Errorf("video job accepted without an operation name")
	}

	c.logger.Debug().Str("operation", op.Name).Str("model", c.videoModel).Msg("genai: video job submitted")
	return op.Name, nil
}

// PollVideoOperation fetches the current state of a video job.
func (c *Client) PollVideoOperation(ctx context.Context, name string) (*VideoOperation, error) {
	var op veoOperationResponse
	if err := c.invoke(ctx, http.MethodGet, "/"+strings.TrimLeft(name, "/"), nil, &op); err != nil {
		return nil, err
	}

	out := &VideoOperation{Name: op.Name, Done: op.Done}
	if op.Error != nil {
		out.Err = &APIError{Code: op.Error.Code, Status: op.Error.Status, Message: op.Error.Message}
	}
	if op.Response != nil && op.Response.GenerateVideoResponse != nil {
		for _, sample := range op.Response.GenerateVideoResponse.GeneratedSamples {
			if sample.Video.URI != "" {
				out.VideoURI = sample.Video.URI
				break
			}
		}
	}
	return out, nil
}

// DownloadVideo fetches the rendered video bytes for a completed job.
func (c *Client) DownloadVideo(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, "", &APIError{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read video: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "video/mp4"
	}
	return blob, mime, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload any, out any) error {
	endpoint := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		var envelope geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Status = envelope.Error.Status
			apiErr.Message = envelope.Error.Message
		} else {
			data, _ := io.ReadAll(resp.Body)
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func wireParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != "" {
			out = append(out, geminiPart{InlineData: &geminiInlineData{MimeType: p.InlineMIME, Data: p.InlineData}})
			continue
		}
		out = append(out, geminiPart{Text: p.Text})
	}
	return out
}

func blockedFromResponse(resp *geminiGenerateContentResponse) *BlockedError {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return &BlockedError{
			Reason:     resp.PromptFeedback.BlockReason,
			Categories: blockedCategories(resp.PromptFeedback.SafetyRatings),
		}
	}
	for _, candidate := range resp.Candidates {
		switch candidate.FinishReason {
		case "SAFETY", "IMAGE_SAFETY", "PROHIBITED_CONTENT":
			return &BlockedError{
				Reason:     candidate.FinishReason,
				Categories: blockedCategories(candidate.SafetyRatings),
			}
		}
	}
	return nil
}

func blockedCategories(ratings []geminiSafetyRating) []string {
	var categories []string
	for _, rating := range ratings {
		if rating.Blocked || rating.Probability == "HIGH" || rating.Probability == "MEDIUM" {
			categories = append(categories, rating.Category)
		}
	}
	return categories
}
