package archive

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"testing"

	"studio/internal/domain"
)

func dataURL(s string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(s))
}

func TestHistoryZipPacksImagesOnly(t *testing.T) {
	entries := []domain.GeneratedContent{
		{ImageURL: dataURL("first")},
		{VideoURL: "/v1/videos/abc.mp4"},
		{ImageURL: dataURL("second")},
	}

	data, err := HistoryZip(entries)
	if err != nil {
		t.Fatalf("HistoryZip: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive holds %d files, want 2 image entries", len(zr.File))
	}
	if zr.File[0].Name != "result-01.png" || zr.File[1].Name != "result-02.png" {
		t.Fatalf("unexpected names %q, %q", zr.File[0].Name, zr.File[1].Name)
	}
}

func TestHistoryZipRejectsEmptyHistory(t *testing.T) {
	if _, err := HistoryZip(nil); err == nil {
		t.Fatal("expected an error for a history with no images")
	}
	if _, err := HistoryZip([]domain.GeneratedContent{{VideoURL: "/v1/videos/a.mp4"}}); err == nil {
		t.Fatal("expected an error when only video entries exist")
	}
}
