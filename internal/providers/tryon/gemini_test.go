package tryon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitroom/internal/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func seededStore(t *testing.T) *memStore {
	t.Helper()
	store := newMemStore()
	ctx := context.Background()
	if err := store.Put(ctx, storage.BucketUploads, "u1/subject.png", pngBytes(t, 10, 10), "image/png"); err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	if err := store.Put(ctx, storage.BucketUploads, "u1/shirt.png", pngBytes(t, 8, 8), "image/png"); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return store
}

func TestGeminiGeneratorSendsInputsAndDecodesComposite(t *testing.T) {
	var got geminiGenerateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "api-key" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := geminiGenerateContentResponse{Candidates: []geminiCandidate{{
			Content: geminiContent{Parts: []geminiPart{{
				InlineData: &geminiInlineData{
					MimeType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(pngBytes(t, 20, 30)),
				},
			}}},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(GeminiOptions{
		APIKey:  "api-key",
		BaseURL: srv.URL,
		Store:   seededStore(t),
	})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	res, err := g.Generate(context.Background(), Request{
		JobID:      "job-1",
		OwnerID:    "u1",
		SubjectRef: "u1/subject.png",
		ItemRefs:   []string{"u1/shirt.png"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Stub {
		t.Fatal("live result must not be flagged as stub")
	}
	if res.MIME != "image/png" {
		t.Fatalf("unexpected mime %q", res.MIME)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if cfg.Width != 20 || cfg.Height != 30 {
		t.Fatalf("unexpected artifact dimensions %dx%d", cfg.Width, cfg.Height)
	}

	// Instruction text plus one inline part per input image.
	if len(got.Contents) != 1 {
		t.Fatalf("expected one content entry, got %d", len(got.Contents))
	}
	parts := got.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts (text + 2 images), got %d", len(parts))
	}
	if parts[0].Text == "" {
		t.Fatal("first part must carry the instruction text")
	}
	if parts[1].InlineData == nil || parts[2].InlineData == nil {
		t.Fatal("image parts must be inlined")
	}
}

func TestGeminiGeneratorSurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"model overloaded"}}`))
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(GeminiOptions{BaseURL: srv.URL, Store: seededStore(t)})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	_, err = g.Generate(context.Background(), Request{
		JobID:      "job-1",
		OwnerID:    "u1",
		SubjectRef: "u1/subject.png",
	})
	if err == nil {
		t.Fatal("expected backend error")
	}
}

func TestGeminiGeneratorFailsOnMissingInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called when inputs cannot be loaded")
	}))
	defer srv.Close()

	g, err := NewGeminiGenerator(GeminiOptions{BaseURL: srv.URL, Store: newMemStore()})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	_, err = g.Generate(context.Background(), Request{
		JobID:      "job-1",
		OwnerID:    "u1",
		SubjectRef: "u1/missing.png",
	})
	if err == nil {
		t.Fatal("expected error for missing subject")
	}
}
