package watermark

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"studio/internal/domain"
)

func testImageDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return domain.PayloadFromBytes(buf.Bytes(), "image/png").DataURL()
}

func TestEmbedAndExtractSignature(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	marked, err := embedSignature(img, "AI Photo Studio")
	if err != nil {
		t.Fatalf("embedSignature returned error: %v", err)
	}
	got, err := extractSignature(marked)
	if err != nil {
		t.Fatalf("extractSignature returned error: %v", err)
	}
	if got != "AI Photo Studio" {
		t.Fatalf("signature round-trip mismatch: %q", got)
	}
}

func TestEmbedSignatureSurvivesPNGEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	marked, err := embedSignature(img, "studio")
	if err != nil {
		t.Fatalf("embedSignature returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, marked); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	redecoded := image.NewNRGBA(decoded.Bounds())
	for y := decoded.Bounds().Min.Y; y < decoded.Bounds().Max.Y; y++ {
		for x := decoded.Bounds().Min.X; x < decoded.Bounds().Max.X; x++ {
			redecoded.Set(x, y, decoded.At(x, y))
		}
	}
	got, err := extractSignature(redecoded)
	if err != nil {
		t.Fatalf("extractSignature after encode: %v", err)
	}
	if got != "studio" {
		t.Fatalf("signature lost in PNG round trip: %q", got)
	}
}

func TestApplyReturnsWatermarkedImage(t *testing.T) {
	w := New("AI Photo Studio", nil)
	input := testImageDataURL(t, 256, 256)

	out := w.Apply(context.Background(), input)
	if out == "" {
		t.Fatal("Apply returned empty image")
	}
	if out == input {
		t.Fatal("Apply should have modified the image")
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Fatalf("expected PNG data url, got prefix %q", out[:32])
	}
}

func TestApplyNeverFailsOutward(t *testing.T) {
	w := New("AI Photo Studio", nil)

	// Not a data URL at all.
	if got := w.Apply(context.Background(), "https://example.com/cat.png"); got != "https://example.com/cat.png" {
		t.Fatalf("expected pass-through for non-data url, got %q", got)
	}

	// Valid data URL, bytes are not an image.
	junk := domain.PayloadFromBytes([]byte("definitely not a png"), "image/png").DataURL()
	if got := w.Apply(context.Background(), junk); got != junk {
		t.Fatal("expected pass-through for undecodable image")
	}

	// Image too small for the invisible mark: the stage fails internally and
	// the original is returned unchanged.
	tiny := testImageDataURL(t, 2, 2)
	if got := w.Apply(context.Background(), tiny); got != tiny {
		t.Fatal("expected pass-through when the invisible-mark stage fails")
	}
}
