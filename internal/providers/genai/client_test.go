package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"studio/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		ImageModel: "image-model",
		VideoModel: "video-model",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGenerateContentForwardsPartOrder(t *testing.T) {
	var captured geminiGenerateContentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/image-model:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key query param")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(geminiGenerateContentResponse{
			Candidates: []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: "image/png", Data: "aW1n"}},
				{Text: "a caption"},
			}}}},
		})
	})

	result, err := client.GenerateContent(context.Background(), ContentRequest{Parts: []Part{
		ImagePart(domain.ImagePayload{Base64: "cHJpbWFyeQ==", MimeType: "image/png"}),
		ImagePart(domain.ImagePayload{Base64: "bWFzaw==", MimeType: "image/png"}),
		TextPart("edit the image"),
	}})
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}

	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("sent %d parts, want 3", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.Data != "cHJpbWFyeQ==" {
		t.Fatal("first part must be the primary image")
	}
	if parts[2].Text != "edit the image" {
		t.Fatal("text instruction must come last")
	}
	if result.ImageBase64 != "aW1n" || result.Text != "a caption" {
		t.Fatalf("result = %+v", result)
	}
}

func TestGenerateContentDecodesErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"quota exceeded"}}`))
	})

	_, err := client.GenerateContent(context.Background(), ContentRequest{Parts: []Part{TextPart("hi")}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != "RESOURCE_EXHAUSTED" || apiErr.HTTPStatus != 429 || apiErr.Message != "quota exceeded" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestGenerateContentSafetyBlock(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiGenerateContentResponse{
			Candidates: []geminiCandidate{{
				FinishReason: "SAFETY",
				SafetyRatings: []geminiSafetyRating{
					{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Blocked: true},
					{Category: "HARM_CATEGORY_HARASSMENT", Probability: "LOW"},
				},
			}},
		})
	})

	_, err := client.GenerateContent(context.Background(), ContentRequest{Parts: []Part{TextPart("hi")}})
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("err = %v, want *BlockedError", err)
	}
	if blocked.Reason != "SAFETY" {
		t.Fatalf("reason = %s", blocked.Reason)
	}
	if len(blocked.Categories) != 1 || blocked.Categories[0] != "HARM_CATEGORY_DANGEROUS_CONTENT" {
		t.Fatalf("categories = %v, want only the blocked category", blocked.Categories)
	}
}

func TestGenerateImageRequestsImageModality(t *testing.T) {
	var captured geminiGenerateContentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(geminiGenerateContentResponse{
			Candidates: []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: "image/png", Data: "aW1n"}},
			}}}},
		})
	})

	if _, err := client.GenerateImage(context.Background(), "a lighthouse", domain.AspectLandscape); err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	cfg := captured.GenerationConfig
	if cfg == nil || len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "IMAGE" {
		t.Fatalf("generationConfig = %+v, want IMAGE modality", cfg)
	}
	if cfg.ImageConfig == nil || cfg.ImageConfig.AspectRatio != "16:9" {
		t.Fatalf("imageConfig = %+v, want 16:9", cfg.ImageConfig)
	}
}

func TestVideoOperationLifecycle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			var req veoPredictRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.Instances) != 1 || req.Instances[0].Prompt != "dance" {
				t.Errorf("instances = %+v", req.Instances)
			}
			if req.Parameters == nil || req.Parameters.AspectRatio != "9:16" {
				t.Errorf("parameters = %+v", req.Parameters)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"name": "operations/op-1"})
		case r.URL.Path == "/operations/op-1":
			_, _ = w.Write([]byte(`{
				"name": "operations/op-1",
				"done": true,
				"response": {"generateVideoResponse": {"generatedSamples": [{"video": {"uri": "files/video-1"}}]}}
			}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	img := domain.ImagePayload{Base64: "aW1n", MimeType: "image/png"}
	name, err := client.StartVideoOperation(context.Background(), VideoStartRequest{
		Prompt:      "dance",
		Image:       &img,
		AspectRatio: domain.AspectPortrait,
	})
	if err != nil {
		t.Fatalf("StartVideoOperation: %v", err)
	}
	if name != "operations/op-1" {
		t.Fatalf("name = %q", name)
	}

	op, err := client.PollVideoOperation(context.Background(), name)
	if err != nil {
		t.Fatalf("PollVideoOperation: %v", err)
	}
	if !op.Done || op.VideoURI != "files/video-1" || op.Err != nil {
		t.Fatalf("op = %+v", op)
	}
}

func TestPollVideoOperationCarriesJobError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "operations/op-2", "done": true, "error": {"code": 13, "status": "INTERNAL", "message": "render failed"}}`))
	})

	op, err := client.PollVideoOperation(context.Background(), "operations/op-2")
	if err != nil {
		t.Fatalf("PollVideoOperation: %v", err)
	}
	if op.Err == nil || op.Err.Status != "INTERNAL" {
		t.Fatalf("op.Err = %+v, want the job error carried through", op.Err)
	}
}

func TestDownloadVideoRelativeURI(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/video-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("mp4-bytes"))
	})

	data, mime, err := client.DownloadVideo(context.Background(), "files/video-1")
	if err != nil {
		t.Fatalf("DownloadVideo: %v", err)
	}
	if string(data) != "mp4-bytes" || mime != "video/mp4" {
		t.Fatalf("data = %q, mime = %q", data, mime)
	}
}
