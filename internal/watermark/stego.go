package watermark

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
)

// embedSignature hides the signature inside the image by spreading its bits
// across the least-significant bits of the R, G, and B channels in row-major
// order, prefixed with a 4-byte big-endian length. The visual change is
// imperceptible.
func embedSignature(src image.Image, signature string) (*image.NRGBA, error) {
	bounds := src.Bounds()
	out := image.NewNRGBA(bounds)
	draw.Draw(out, bounds, src, bounds.Min, draw.Src)

	payload := make([]byte, 4+len(signature))
	binary.BigEndian.PutUint32(payload, uint32(len(signature)))
	copy(payload[4:], signature)

	capacityBits := bounds.Dx() * bounds.Dy() * 3
	if len(payload)*8 > capacityBits {
		return nil, fmt.Errorf("image too small for signature: need %d bits, have %d", len(payload)*8, capacityBits)
	}

	bit := 0
	for _, b := range payload {
		for shift := 7; shift >= 0; shift-- {
			value := (b >> uint(shift)) & 1
			idx := channelOffset(out, bit)
			out.Pix[idx] = (out.Pix[idx] &^ 1) | value
			bit++
		}
	}
	return out, nil
}

// extractSignature recovers a signature hidden by embedSignature. Used by the
// tests to confirm the mark survives encoding.
func extractSignature(img *image.NRGBA) (string, error) {
	bounds := img.Bounds()
	capacityBits := bounds.Dx() * bounds.Dy() * 3
	if capacityBits < 32 {
		return "", fmt.Errorf("image too small to carry a signature")
	}

	readByte := func(bitOffset int) byte {
		var b byte
		for i := 0; i < 8; i++ {
			idx := channelOffset(img, bitOffset+i)
			b = b<<1 | img.Pix[idx]&1
		}
		return b
	}

	header := make([]byte, 4)
	for i := range header {
		header[i] = readByte(i * 8)
	}
	length := int(binary.BigEndian.Uint32(header))
	if length < 0 || (4+length)*8 > capacityBits {
		return "", fmt.Errorf("corrupt signature length %d", length)
	}

	payload := make([]byte, length)
	for i := range payload {
		payload[i] = readByte((4 + i) * 8)
	}
	return string(payload), nil
}

// channelOffset maps a bit index onto the Pix offset of the next R, G, or B
// channel, skipping alpha.
func channelOffset(img *image.NRGBA, bit int) int {
	pixel := bit / 3
	channel := bit % 3
	return pixel*4 + channel
}
