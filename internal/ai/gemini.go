package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobboard/internal/model"
)

// Default Gemini endpoint and models.
const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultImageModel    = "gemini-2.5-flash-image"
	DefaultVideoModel    = "veo-3.1-fast-generate-preview"
)

// entityNotFound is the provider message for a key that cannot reach the model.
const entityNotFound = "requested entity was not found"

// GeminiProvider calls the Gemini generateContent and predictLongRunning
// REST endpoints.
type GeminiProvider struct {
	baseURL    string
	apiKey     string
	imageModel string
	videoModel string
	httpClient *http.Client
}

// NewGeminiProvider creates a provider targeting the Gemini API.
func NewGeminiProvider(baseURL, apiKey, imageModel, videoModel string, httpClient *http.Client) *GeminiProvider {
	return &GeminiProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		imageModel: imageModel,
		videoModel: videoModel,
		httpClient: httpClient,
	}
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

// generateRequest mirrors the generateContent request body.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type videoInstance struct {
	Prompt string `json:"prompt"`
	Image  *struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"image,omitempty"`
}

type videoParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	SampleCount int    `json:"sampleCount"`
}

// predictRequest mirrors the predictLongRunning request body.
type predictRequest struct {
	Instances  []videoInstance `json:"instances"`
	Parameters videoParameters `json:"parameters"`
}

type apiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type operationResponse struct {
	Name     string     `json:"name"`
	Done     bool       `json:"done"`
	Error    *apiStatus `json:"error,omitempty"`
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

// GenerateContent sends parts to the image model.
func (p *GeminiProvider) GenerateContent(ctx context.Context, parts []Part) ([]Part, error) {
	reqParts := make([]contentPart, 0, len(parts))
	for _, part := range parts {
		if part.Inline != nil {
			reqParts = append(reqParts, contentPart{InlineData: &inlineData{
				MimeType: part.Inline.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(part.Inline.Data),
			}})
			continue
		}
		reqParts = append(reqParts, contentPart{Text: part.Text})
	}

	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.imageModel)
	if err := p.doJSON(ctx, http.MethodPost, url, generateRequest{Contents: []content{{Parts: reqParts}}}, &resp); err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, nil
	}
	var out []Part
	for _, cp := range resp.Candidates[0].Content.Parts {
		if cp.InlineData != nil {
			data, err := base64.StdEncoding.DecodeString(cp.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inline data: %w", err)
			}
			out = append(out, Part{Inline: &Media{MIMEType: cp.InlineData.MimeType, Data: data}})
			continue
		}
		out = append(out, Part{Text: cp.Text})
	}
	return out, nil
}

// StartVideo submits an image-to-video generation.
func (p *GeminiProvider) StartVideo(ctx context.Context, req VideoRequest) (*Operation, error) {
	instance := videoInstance{Prompt: req.Prompt}
	if len(req.Image.Data) > 0 {
		instance.Image = &struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		}{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.Image.Data),
			MimeType:           req.Image.MIMEType,
		}
	}
	body := predictRequest{
		Instances: []videoInstance{instance},
		Parameters: videoParameters{
			AspectRatio: req.AspectRatio,
			Resolution:  req.Resolution,
			SampleCount: 1,
		},
	}

	var resp operationResponse
	url := fmt.Sprintf("%s/models/%s:predictLongRunning", p.baseURL, p.videoModel)
	if err := p.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, fmt.Errorf("start video: %w", err)
	}
	return resp.toOperation(), nil
}

// GetOperation reads the current state of operation name.
func (p *GeminiProvider) GetOperation(ctx context.Context, name string) (*Operation, error) {
	var resp operationResponse
	url := p.baseURL + "/" + strings.TrimLeft(name, "/")
	if err := p.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("get operation: %w", err)
	}
	return resp.toOperation(), nil
}

// Download fetches uri with the API key attached.
func (p *GeminiProvider) Download(ctx context.Context, uri string) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download: %w", statusError(resp, data))
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "video/mp4"
	}
	return &Media{MIMEType: mime, Data: data}, nil
}

func (p *GeminiProvider) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp, respBytes)
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (r *operationResponse) toOperation() *Operation {
	op := &Operation{Name: r.Name, Done: r.Done}
	if r.Error != nil {
		op.Err = classify(r.Error)
	}
	if r.Response != nil {
		for _, s := range r.Response.GenerateVideoResponse.GeneratedSamples {
			if s.Video.URI != "" {
				op.VideoURIs = append(op.VideoURIs, s.Video.URI)
			}
		}
	}
	return op
}

// statusError turns a non-2xx response into a *model.HTTPError, wrapping
// model.ErrCredentialRequired when the provider reports the entity as missing.
func statusError(resp *http.Response, body []byte) error {
	httpErr := &model.HTTPError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}

	var envelope struct {
		Error *apiStatus `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		httpErr.Err = classify(envelope.Error)
	} else {
		httpErr.Err = errors.New(strings.TrimSpace(string(body)))
	}
	return httpErr
}

func classify(s *apiStatus) error {
	if strings.Contains(strings.ToLower(s.Message), entityNotFound) ||
		(s.Code == http.StatusNotFound && s.Status == "NOT_FOUND") {
		return fmt.Errorf("%w: %s", model.ErrCredentialRequired, s.Message)
	}
	if s.Status != "" {
		return fmt.Errorf("%s: %s", s.Status, s.Message)
	}
	return errors.New(s.Message)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
