// Package watermark stamps finished images with the studio signature: an
// invisible steganographic mark followed by a visible overlay. Watermarking
// failure must never block delivery of an otherwise-successful generation, so
// Apply has no error channel and degrades to returning its input.
package watermark

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

// Watermarker applies the studio signature to terminal output images.
type Watermarker struct {
	signature string
	logger    *infra.Logger
}

// New constructs a Watermarker with the given signature text. Diagnostics go
// to the injected logger; a nil logger discards them.
func New(signature string, logger *infra.Logger) *Watermarker {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Watermarker{signature: signature, logger: logger}
}

// Apply embeds the invisible mark and draws the visible overlay, returning
// the watermarked image as a PNG data URL. On any internal failure the
// original input is returned unmodified and the failure is only logged.
func (w *Watermarker) Apply(ctx context.Context, imageURL string) string {
	if err := ctx.Err(); err != nil {
		return imageURL
	}

	payload, err := domain.ParseDataURL(imageURL)
	if err != nil {
		w.logger.Warn().Err(err).Msg("watermark: unparseable image, passing through")
		return imageURL
	}
	raw, err := payload.Bytes()
	if err != nil {
		w.logger.Warn().Err(err).Msg("watermark: undecodable payload, passing through")
		return imageURL
	}
	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		w.logger.Warn().Err(err).Msg("watermark: unsupported image format, passing through")
		return imageURL
	}

	marked, err := embedSignature(decoded, w.signature)
	if err != nil {
		w.logger.Warn().Err(err).Msg("watermark: invisible mark failed, passing through")
		return imageURL
	}
	drawOverlay(marked, w.signature)

	var buf bytes.Buffer
	if err := png.Encode(&buf, marked); err != nil {
		w.logger.Warn().Err(err).Msg("watermark: encode failed, passing through")
		return imageURL
	}
	return domain.PayloadFromBytes(buf.Bytes(), "image/png").DataURL()
}
