package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/catalog"
	"studio/internal/domain"
	"studio/internal/gateway"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/orchestrator"
	"studio/internal/storage"
)

type fakeGateway struct{}

func (fakeGateway) EditImage(ctx context.Context, prompt string, images []domain.ImagePayload, mask *domain.ImagePayload) (*domain.GeneratedContent, error) {
	return &domain.GeneratedContent{ImageURL: "data:image/png;base64,b3V0"}, nil
}

func (fakeGateway) GenerateImageFromText(ctx context.Context, prompt string, aspect domain.AspectRatio) (*domain.GeneratedContent, error) {
	return &domain.GeneratedContent{ImageURL: "data:image/png;base64,dDJp"}, nil
}

func (fakeGateway) GenerateBatchEdits(ctx context.Context, prompt string, images []domain.ImagePayload, count int) ([]string, error) {
	urls := make([]string, count)
	for i := range urls {
		urls[i] = "data:image/png;base64,YmF0Y2g="
	}
	return urls, nil
}

func (fakeGateway) GenerateVideo(ctx context.Context, prompt string, image *domain.ImagePayload, aspect domain.AspectRatio, onProgress gateway.ProgressFunc) ([]byte, string, error) {
	return []byte("video"), "video/mp4", nil
}

type client struct {
	t       *testing.T
	server  *httptest.Server
	videos  *storage.FileStore
	cookies []*http.Cookie
	headers map[string]string
}

func newStudio(t *testing.T, accessCode string) *client {
	t.Helper()
	registry, err := catalog.NewRegistry(catalog.DefaultTransformations(), nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	videos, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	logger := zerolog.New(zerolog.NewTestWriter(t))
	cfg := &infra.Config{AppEnv: "test", AccessCode: accessCode, DefaultLocale: "vi"}
	app := handlers.NewApp(handlers.Options{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Gateway:  fakeGateway{},
		Videos:   videos,
	})
	router := httpapi.NewRouter(app, httpapi.Options{Logger: logger, DefaultLocale: "vi"})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &client{t: t, server: server, videos: videos, headers: map[string]string{}}
}

func (c *client) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	if cookies := resp.Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func (c *client) waitForState(want orchestrator.State) orchestrator.Snapshot {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, body := c.do(http.MethodGet, "/v1/state", nil)
		if resp.StatusCode != http.StatusOK {
			c.t.Fatalf("GET /v1/state returned %d", resp.StatusCode)
		}
		var snap orchestrator.Snapshot
		if err := json.Unmarshal(body, &snap); err != nil {
			c.t.Fatalf("decode snapshot: %v", err)
		}
		if snap.State == want {
			return snap
		}
		if time.Now().After(deadline) {
			c.t.Fatalf("state = %s, never reached %s", snap.State, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTransformationsLocalizedTitles(t *testing.T) {
	c := newStudio(t, "")
	c.headers["X-Locale"] = "en"
	resp, body := c.do(http.MethodGet, "/v1/transformations", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload struct {
		Transformations []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
			Shape string `json:"shape"`
		} `json:"transformations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Transformations) != len(catalog.DefaultTransformations()) {
		t.Fatalf("listed %d transformations", len(payload.Transformations))
	}
	if payload.Transformations[0].Title == "" || payload.Transformations[0].Title == payload.Transformations[0].Key {
		t.Fatalf("title %q not localized", payload.Transformations[0].Title)
	}
}

func TestReorderAppliesMergedOrder(t *testing.T) {
	c := newStudio(t, "")
	resp, body := c.do(http.MethodPut, "/v1/transformations/order", map[string]any{
		"order": []string{"lookbook", "bogus-key", "anime-style"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload struct {
		Order []string `json:"order"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Order[0] != "lookbook" || payload.Order[1] != "anime-style" {
		t.Fatalf("order = %v, want saved keys first and unknown keys dropped", payload.Order)
	}
	if len(payload.Order) != len(catalog.DefaultTransformations()) {
		t.Fatalf("order length = %d, missing keys must be appended", len(payload.Order))
	}
}

func TestGenerateFlowReachesSucceeded(t *testing.T) {
	c := newStudio(t, "")
	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("photo"))
	resp, _ := c.do(http.MethodPost, "/v1/generate", map[string]any{
		"transformationKey": "anime-style",
		"primaryImage":      img,
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	snap := c.waitForState(orchestrator.StateSucceeded)
	if snap.Result == nil || snap.Result.ImageURL == "" {
		t.Fatalf("snapshot = %+v, want image result", snap)
	}

	resp, body := c.do(http.MethodGet, "/v1/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	var hist struct {
		Items []domain.GeneratedContent `json:"items"`
	}
	if err := json.Unmarshal(body, &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Items) != 1 {
		t.Fatalf("history items = %d, want 1", len(hist.Items))
	}
}

func TestGenerateValidationSurfacesLocalizedError(t *testing.T) {
	c := newStudio(t, "")
	c.headers["X-Locale"] = "vi"
	resp, _ := c.do(http.MethodPost, "/v1/generate", map[string]any{
		"transformationKey": "anime-style",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	snap := c.waitForState(orchestrator.StateFailed)
	if snap.Error == "" {
		t.Fatal("expected a user-facing validation message")
	}
	if snap.ErrorClass != string(domain.ErrorClassValidation) {
		t.Fatalf("error class = %q, want validation", snap.ErrorClass)
	}
}

func TestUnknownTransformationIs404(t *testing.T) {
	c := newStudio(t, "")
	resp, _ := c.do(http.MethodPost, "/v1/generate", map[string]any{
		"transformationKey": "does-not-exist",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAccessGate(t *testing.T) {
	// "studio123" reversed then base64 encoded.
	code := base64.StdEncoding.EncodeToString([]byte("321oiduts"))
	c := newStudio(t, code)

	resp, _ := c.do(http.MethodGet, "/v1/transformations", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 before passcode", resp.StatusCode)
	}

	resp, _ = c.do(http.MethodPost, "/v1/session", map[string]any{"accessCode": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a wrong code", resp.StatusCode)
	}

	resp, _ = c.do(http.MethodPost, "/v1/session", map[string]any{"accessCode": "studio123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for the right code", resp.StatusCode)
	}

	resp, _ = c.do(http.MethodGet, "/v1/transformations", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want access after authorization", resp.StatusCode)
	}
}

func TestVideoUnknownKeyIs404(t *testing.T) {
	c := newStudio(t, "")
	resp, _ := c.do(http.MethodGet, "/v1/videos/missing.mp4", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestVideoServedWithStoredMIME(t *testing.T) {
	c := newStudio(t, "")
	if _, err := c.videos.Write(context.Background(), "clip.webm", []byte("webm-bytes")); err != nil {
		t.Fatalf("seed video: %v", err)
	}

	resp, body := c.do(http.MethodGet, "/v1/videos/clip.webm", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "video/webm" {
		t.Fatalf("Content-Type = %q, want video/webm", ct)
	}
	if string(body) != "webm-bytes" {
		t.Fatalf("body = %q, want stored bytes", body)
	}
}
