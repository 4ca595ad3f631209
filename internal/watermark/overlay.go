package watermark

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const overlayPadding = 8

// drawOverlay stamps the visible signature into the bottom-right corner: a
// translucent dark badge with the signature text on top.
func drawOverlay(img *image.NRGBA, signature string) {
	if signature == "" {
		return
	}
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, signature).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	bounds := img.Bounds()
	badgeWidth := textWidth + overlayPadding*2
	badgeHeight := textHeight + overlayPadding
	if badgeWidth > bounds.Dx() || badgeHeight > bounds.Dy() {
		// Tiny images get no visible mark rather than an unreadable smear.
		return
	}

	badge := image.Rect(
		bounds.Max.X-badgeWidth-overlayPadding,
		bounds.Max.Y-badgeHeight-overlayPadding,
		bounds.Max.X-overlayPadding,
		bounds.Max.Y-overlayPadding,
	)
	draw.Draw(img, badge, &image.Uniform{color.NRGBA{0, 0, 0, 136}}, image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{color.NRGBA{255, 255, 255, 230}},
		Face: face,
		Dot: fixed.P(
			badge.Min.X+overlayPadding,
			badge.Min.Y+(badgeHeight+face.Metrics().Ascent.Ceil())/2,
		),
	}
	drawer.DrawString(signature)
}
