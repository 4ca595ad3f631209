package gateway

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/providers/genai"
)

// maskInstructionFormat wraps the user instruction when a mask constrains the
// edit. The exact wording materially affects model behavior; keep it stable.
const maskInstructionFormat = "Apply the following instruction only to the masked area of the image: %q. Preserve the unmasked area."

// VideoPhase identifies a phase transition of the video pipeline, reported
// through the progress callback.
type VideoPhase string

const (
	VideoPhaseSubmitted VideoPhase = "submitted"
	VideoPhasePolling   VideoPhase = "polling"
	VideoPhaseFetching  VideoPhase = "fetching"
)

// ProgressFunc receives video phase transitions. May be nil.
type ProgressFunc func(phase VideoPhase)

// modelClient is the slice of the Gemini client the gateway consumes.
type modelClient interface {
	GenerateContent(ctx context.Context, req genai.ContentRequest) (*genai.ContentResult, error)
	GenerateImage(ctx context.Context, prompt string, aspect domain.AspectRatio) (*genai.ContentResult, error)
	StartVideoOperation(ctx context.Context, req genai.VideoStartRequest) (string, error)
	PollVideoOperation(ctx context.Context, name string) (*genai.VideoOperation, error)
	DownloadVideo(ctx context.Context, uri string) ([]byte, string, error)
}

// Gateway is the typed boundary to the remote generative service. Every error
// leaving the gateway is already normalized into a *domain.GenerationError
// with a human-readable message; the gateway itself never retries.
type Gateway struct {
	client       modelClient
	logger       *infra.Logger
	pollInterval time.Duration
	limiter      *rate.Limiter
}

// Options configures a Gateway.
type Options struct {
	Client       modelClient
	Logger       *infra.Logger
	PollInterval time.Duration
	// BatchInterval paces concurrent batch sub-requests; zero disables pacing.
	BatchInterval time.Duration
}

// New constructs a Gateway.
func New(opts Options) (*Gateway, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("model client is required")
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	var limiter *rate.Limiter
	if opts.BatchInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.BatchInterval), 2)
	}
	return &Gateway{
		client:       opts.Client,
		logger:       logger,
		pollInterval: interval,
		limiter:      limiter,
	}, nil
}

// EditImage performs one image edit. The multi-part request is assembled in
// the order the model expects: primary image first, the mask (if any)
// immediately after the image it constrains, remaining images next, and the
// text instruction last. A mask also rewrites the instruction to scope the
// edit to the masked area.
func (g *Gateway) EditImage(ctx context.Context, prompt string, images []domain.ImagePayload, mask *domain.ImagePayload) (*domain.GeneratedContent, error) {
	if len(images) == 0 {
		return nil, domain.NewValidationError("at least one input image is required")
	}

	instruction := prompt
	parts := make([]genai.Part, 0, len(images)+2)
	parts = append(parts, genai.ImagePart(images[0]))
	if mask != nil && !mask.IsZero() {
		parts = append(parts, genai.ImagePart(*mask))
		instruction = fmt.Sprintf(maskInstructionFormat, prompt)
	}
	for _, extra := range images[1:] {
		parts = append(parts, genai.ImagePart(extra))
	}
	parts = append(parts, genai.TextPart(instruction))

	result, err := g.client.GenerateContent(ctx, genai.ContentRequest{Parts: parts})
	if err != nil {
		return nil, g.normalize(err)
	}
	if result.ImageBase64 == "" {
		return nil, g.normalize(domain.ErrNoImageReturned)
	}

	content := &domain.GeneratedContent{
		ImageURL: domain.ImagePayload{Base64: result.ImageBase64, MimeType: imageMIME(result.ImageMIME)}.DataURL(),
		Text:     result.Text,
	}
	return content, nil
}

// GenerateImageFromText synthesizes one image from a text prompt at the
// requested aspect ratio.
func (g *Gateway) GenerateImageFromText(ctx context.Context, prompt string, aspect domain.AspectRatio) (*domain.GeneratedContent, error) {
	result, err := g.client.GenerateImage(ctx, prompt, aspect)
	if err != nil {
		return nil, g.normalize(err)
	}
	if result.ImageBase64 == "" {
		return nil, g.normalize(domain.ErrNoImageReturned)
	}
	return &domain.GeneratedContent{
		ImageURL: domain.ImagePayload{Base64: result.ImageBase64, MimeType: imageMIME(result.ImageMIME)}.DataURL(),
	}, nil
}

// GenerateBatchEdits issues count independent edit calls concurrently and
// returns the image URLs that succeeded, in completion order. Partial
// failures are tolerated; the call fails only when every sub-call fails.
func (g *Gateway) GenerateBatchEdits(ctx context.Context, prompt string, images []domain.ImagePayload, count int) ([]string, error) {
	if count <= 0 {
		count = 1
	}
	if count > 4 {
		count = 4
	}

	var (
		mu      sync.Mutex
		urls    []string
		lastErr error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		eg.Go(func() error {
			if g.limiter != nil {
				if err := g.limiter.Wait(egCtx); err != nil {
					mu.Lock()
					lastErr = err
					mu.Unlock()
					return nil
				}
			}
			content, err := g.EditImage(egCtx, prompt, images, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				return nil
			}
			urls = append(urls, content.ImageURL)
			return nil
		})
	}
	// Sub-call failures are swallowed above, so Wait only surfaces context
	// cancellation.
	if err := eg.Wait(); err != nil {
		return nil, g.normalize(err)
	}

	if len(urls) == 0 {
		if lastErr != nil {
			return nil, g.normalize(lastErr)
		}
		return nil, g.normalize(domain.ErrNoImageReturned)
	}

	g.logger.Debug().Int("requested", count).Int("succeeded", len(urls)).Msg("gateway: batch edits complete")
	return urls, nil
}

// GenerateVideo submits a long-running video job and polls it at the
// configured interval until completion, reporting phase transitions through
// onProgress. The poll loop honors ctx so a superseded session can abort
// without acting on a stale job. Returns the rendered video bytes and MIME.
func (g *Gateway) GenerateVideo(ctx context.Context, prompt string, image *domain.ImagePayload, aspect domain.AspectRatio, onProgress ProgressFunc) ([]byte, string, error) {
	notify := func(phase VideoPhase) {
		if onProgress != nil {
			onProgress(phase)
		}
	}

	name, err := g.client.StartVideoOperation(ctx, genai.VideoStartRequest{
		Prompt:      prompt,
		Image:       image,
		AspectRatio: aspect,
	})
	if err != nil {
		return nil, "", g.normalize(err)
	}
	notify(VideoPhaseSubmitted)

	for {
		notify(VideoPhasePolling)
		op, err := g.client.PollVideoOperation(ctx, name)
		if err != nil {
			return nil, "", g.normalize(err)
		}
		if op.Err != nil {
			return nil, "", g.normalize(op.Err)
		}
		if !op.Done {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(g.pollInterval):
			}
			continue
		}
		if op.VideoURI == "" {
			return nil, "", g.normalize(domain.ErrNoVideoReturned)
		}

		notify(VideoPhaseFetching)
		blob, mime, err := g.client.DownloadVideo(ctx, op.VideoURI)
		if err != nil {
			return nil, "", g.normalize(err)
		}
		return blob, mime, nil
	}
}

func imageMIME(mime string) string {
	if strings.TrimSpace(mime) == "" {
		return domain.DefaultImageMIME
	}
	return mime
}
