package tryon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"fitroom/internal/storage"
)

// maxArtifactEdge bounds the longest edge of a stored artifact; larger
// backend output is downscaled before persistence.
const maxArtifactEdge = 2048

// GeminiOptions configures the live generation client.
type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Store      storage.ObjectStore
	Logger     *zerolog.Logger
}

// GeminiGenerator calls a Gemini-style generateContent endpoint with the
// subject and item images inlined, and normalizes the returned composite to
// PNG.
type GeminiGenerator struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	store      storage.ObjectStore
	logger     zerolog.Logger
}

// NewGeminiGenerator constructs the live client. A nil HTTP client gets a
// reusable default with a conservative timeout.
func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("tryon: object store is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &GeminiGenerator{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		store:      opts.Store,
		logger:     logger,
	}, nil
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

type geminiGenerateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// Generate loads the input objects, invokes the backend once, and returns the
// normalized composite. Retrying is the caller's concern.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	parts := []geminiPart{{Text: buildInstruction(len(req.ItemRefs))}}

	subject, err := g.inlinePart(ctx, req.SubjectRef)
	if err != nil {
		return nil, fmt.Errorf("tryon: load subject %s: %w", req.SubjectRef, err)
	}
	parts = append(parts, subject)
	for _, ref := range req.ItemRefs {
		item, err := g.inlinePart(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("tryon: load item %s: %w", ref, err)
		}
		parts = append(parts, item)
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	}
	var response geminiGenerateContentResponse
	if err := g.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(g.model)), payload, &response); err != nil {
		return nil, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("tryon: decode inline data: %w", err)
			}
			normalized, err := normalizePNG(data)
			if err != nil {
				return nil, fmt.Errorf("tryon: normalize artifact: %w", err)
			}
			g.logger.Debug().
				Str("job_id", req.JobID).
				Str("model", g.model).
				Msg("tryon: generated composite")
			return &Result{Data: normalized, MIME: "image/png"}, nil
		}
	}
	return nil, fmt.Errorf("tryon: backend returned no image content")
}

func (g *GeminiGenerator) inlinePart(ctx context.Context, ref string) (geminiPart, error) {
	data, contentType, err := g.store.Get(ctx, storage.BucketUploads, ref)
	if err != nil {
		return geminiPart{}, err
	}
	if contentType == "" {
		contentType = "image/png"
	}
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: contentType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}, nil
}

func (g *GeminiGenerator) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("tryon: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tryon: create request: %w", err)
	}
	q := req.URL.Query()
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tryon: invoke backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("tryon: backend status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if len(data) > 0 {
			return fmt.Errorf("tryon: backend status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("tryon: backend status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tryon: decode backend response: %w", err)
	}
	return nil
}

func buildInstruction(items int) string {
	var b strings.Builder
	b.WriteString("Compose a photorealistic image of the person in the first photo")
	if items > 0 {
		fmt.Fprintf(&b, " wearing the %d item(s) shown in the following photos", items)
	}
	b.WriteString(". Keep the person's pose, face, and background unchanged.")
	return b.String()
}

// normalizePNG re-encodes the backend output as PNG and caps its dimensions.
func normalizePNG(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxArtifactEdge || bounds.Dy() > maxArtifactEdge {
		img = imaging.Fit(img, maxArtifactEdge, maxArtifactEdge, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
