// Package imgutil holds the small pixel-level helpers the pipelines need.
package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	"studio/internal/domain"
)

// Dimensions decodes just enough of the payload to report its pixel size.
func Dimensions(p domain.ImagePayload) (int, int, error) {
	raw, err := p.Bytes()
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ResizeToMatch scales the secondary image to the primary image's pixel
// dimensions so a compositing step receives consistently sized inputs. When
// the dimensions already match, the secondary payload is returned untouched.
func ResizeToMatch(secondary, primary domain.ImagePayload) (domain.ImagePayload, error) {
	width, height, err := Dimensions(primary)
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("primary image: %w", err)
	}

	secWidth, secHeight, err := Dimensions(secondary)
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("secondary image: %w", err)
	}
	if secWidth == width && secHeight == height {
		return secondary, nil
	}

	raw, err := secondary.Bytes()
	if err != nil {
		return domain.ImagePayload{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("decode secondary image: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return domain.ImagePayload{}, fmt.Errorf("encode resized image: %w", err)
	}
	return domain.PayloadFromBytes(buf.Bytes(), "image/png"), nil
}
