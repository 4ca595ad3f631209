package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultImageMIME is assumed whenever a data URL omits its media type.
const DefaultImageMIME = "image/png"

// DefaultVideoMIME is assumed whenever a rendered video's media type is
// unknown.
const DefaultVideoMIME = "video/mp4"

var videoExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

// VideoExtension maps a video media type to the file extension used for its
// storage key. Unknown types fall back to .mp4.
func VideoExtension(mimeType string) string {
	if ext, ok := videoExtensions[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return ".mp4"
}

// VideoMIMEForKey recovers the media type from a storage key's extension.
func VideoMIMEForKey(key string) string {
	for mimeType, ext := range videoExtensions {
		if strings.HasSuffix(key, ext) {
			return mimeType
		}
	}
	return DefaultVideoMIME
}

// ImagePayload is a decoded data-URL image: raw base64 plus its media type.
type ImagePayload struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// ParseDataURL splits a data URL of the form data:<mime>;base64,<payload>
// into an ImagePayload. The media type defaults to image/png when absent.
func ParseDataURL(raw string) (ImagePayload, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return ImagePayload{}, fmt.Errorf("not a data url")
	}
	comma := strings.IndexByte(raw, ',')
	if comma < 0 {
		return ImagePayload{}, fmt.Errorf("malformed data url: missing payload")
	}
	meta := raw[len("data:"):comma]
	payload := raw[comma+1:]
	if payload == "" {
		return ImagePayload{}, fmt.Errorf("malformed data url: empty payload")
	}

	mime := DefaultImageMIME
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		if m := strings.TrimSpace(meta[:semi]); m != "" {
			mime = m
		}
	} else if m := strings.TrimSpace(meta); m != "" {
		mime = m
	}

	return ImagePayload{Base64: payload, MimeType: mime}, nil
}

// PayloadFromBytes encodes raw image bytes into an ImagePayload.
func PayloadFromBytes(data []byte, mime string) ImagePayload {
	if strings.TrimSpace(mime) == "" {
		mime = DefaultImageMIME
	}
	return ImagePayload{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mime,
	}
}

// Bytes decodes the base64 payload back into raw image bytes.
func (p ImagePayload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}

// DataURL re-assembles the payload into a browser-consumable data URL.
func (p ImagePayload) DataURL() string {
	mime := p.MimeType
	if mime == "" {
		mime = DefaultImageMIME
	}
	return "data:" + mime + ";base64," + p.Base64
}

// IsZero reports whether the payload carries no image data.
func (p ImagePayload) IsZero() bool {
	return p.Base64 == ""
}

// GeneratedContent is the unit of result produced by one generation. At least
// one of ImageURL, Text, or VideoURL is populated on success; all three are
// independent so text-only, image-only, and video-only results are all valid.
type GeneratedContent struct {
	ImageURL string `json:"imageUrl,omitempty"`
	Text     string `json:"text,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`

	// OriginalImageURL points at the primary input for "use as new input"
	// chaining; SecondaryImageURL carries an intermediate artifact such as
	// the line-art output of a two-step pipeline.
	OriginalImageURL  string `json:"originalImageUrl,omitempty"`
	SecondaryImageURL string `json:"secondaryImageUrl,omitempty"`

	// VideoKey identifies the stored video bytes backing VideoURL. It is a
	// transient local handle that must be released when the entry is evicted.
	VideoKey string `json:"-"`
}

// IsZero reports whether the content carries no terminal output at all.
func (c GeneratedContent) IsZero() bool {
	return c.ImageURL == "" && c.Text == "" && c.VideoURL == ""
}

// AspectRatio is the target frame shape requested from the model.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectClassic   AspectRatio = "3:4"
	AspectWide      AspectRatio = "4:3"
)

// NormalizeAspect sanitizes free-form input into a supported ratio.
func NormalizeAspect(raw string) AspectRatio {
	switch strings.TrimSpace(raw) {
	case "16:9":
		return AspectLandscape
	case "9:16":
		return AspectPortrait
	case "3:4":
		return AspectClassic
	case "4:3":
		return AspectWide
	default:
		return AspectSquare
	}
}

// QualityTier selects the rendering fidelity requested in lookbook prompts.
type QualityTier string

const (
	QualityStandard QualityTier = "standard"
	QualityHigh     QualityTier = "high"
	QualityUltra    QualityTier = "ultra"
)

// PromptSuffix returns the instruction fragment appended for the tier. The
// standard tier adds nothing.
func (q QualityTier) PromptSuffix() string {
	switch q {
	case QualityHigh:
		return " Render the final image in crisp 4K quality."
	case QualityUltra:
		return " Render the final image in ultra-detailed 8K quality with refined textures."
	default:
		return ""
	}
}

// NormalizeQuality sanitizes free-form input into a supported tier.
func NormalizeQuality(raw string) QualityTier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(QualityHigh):
		return QualityHigh
	case string(QualityUltra):
		return QualityUltra
	default:
		return QualityStandard
	}
}
