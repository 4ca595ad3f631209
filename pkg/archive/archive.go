package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"studio/internal/domain"
)

// mimeExtensions maps the image types the model returns to file extensions.
var mimeExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// HistoryZip packs the image results of a session history into a zip archive
// for download. Entries without an image, such as video results, are skipped.
func HistoryZip(entries []domain.GeneratedContent) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	n := 0
	for _, entry := range entries {
		if entry.ImageURL == "" {
			continue
		}
		payload, err := domain.ParseDataURL(entry.ImageURL)
		if err != nil {
			continue
		}
		data, err := payload.Bytes()
		if err != nil {
			continue
		}
		n++
		name := fmt.Sprintf("result-%02d%s", n, extensionFor(payload.MimeType))
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("archive: create %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("archive: write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: close: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("archive: no downloadable images in history")
	}
	return buf.Bytes(), nil
}

func extensionFor(mime string) string {
	if ext, ok := mimeExtensions[strings.ToLower(mime)]; ok {
		return ext
	}
	return ".png"
}
