package orchestrator

import (
	"context"
	"errors"
	"strings"

	"studio/internal/catalog"
	"studio/internal/domain"
	"studio/internal/gateway"
	"studio/internal/imgutil"
)

// outcome carries a pipeline's terminal payload. Exactly one of content,
// candidates, or lookbook is set on success.
type outcome struct {
	pipeline   string
	content    *domain.GeneratedContent
	candidates []string
	lookbook   []string
}

// validate is the pre-network gate. A failure here never reaches the gateway.
func (o *Orchestrator) validate(t catalog.Transformation, in Input) error {
	switch t.Shape {
	case catalog.ShapeFreeText:
		if strings.TrimSpace(in.Prompt) == "" {
			return domain.NewValidationError(o.translate("error.prompt_required"))
		}
	case catalog.ShapeSingle, catalog.ShapeDualOptional:
		if in.Primary == nil || in.Primary.IsZero() {
			return domain.NewValidationError(o.translate("error.primary_required"))
		}
		if t.Prompt == catalog.CustomPrompt && strings.TrimSpace(in.Prompt) == "" {
			return domain.NewValidationError(o.translate("error.prompt_required"))
		}
	case catalog.ShapeDualRequired, catalog.ShapeTwoStep:
		if in.Primary == nil || in.Primary.IsZero() || in.Secondary == nil || in.Secondary.IsZero() {
			return domain.NewValidationError(o.translate("error.both_images_required"))
		}
	case catalog.ShapeGallery, catalog.ShapeBatchVideo:
		if len(in.Gallery) == 0 {
			return domain.NewValidationError(o.translate("error.gallery_required"))
		}
	case catalog.ShapeLookbook:
		if len(in.Gallery) == 0 {
			return domain.NewValidationError(o.translate("error.gallery_required"))
		}
		if strings.TrimSpace(in.Prompt) == "" {
			return domain.NewValidationError(o.translate("error.description_required"))
		}
	case catalog.ShapeTemplateFields:
		if in.Primary == nil || in.Primary.IsZero() || in.Secondary == nil || in.Secondary.IsZero() {
			return domain.NewValidationError(o.translate("error.both_images_required"))
		}
		for _, field := range t.Fields {
			if strings.TrimSpace(in.Fields[field]) == "" {
				return domain.NewValidationError(o.translate("error.fields_required"))
			}
		}
	}
	if t.MaxImages > 0 && len(in.Gallery) > t.MaxImages {
		return domain.NewValidationError(o.translate("error.too_many_images"))
	}
	return nil
}

func (o *Orchestrator) runPipeline(ctx context.Context, t catalog.Transformation, in Input) (outcome, error) {
	switch t.Shape {
	case catalog.ShapeTemplateFields:
		return o.runTemplated(ctx, t, in)
	case catalog.ShapeLookbook:
		return o.runLookbook(ctx, t, in)
	case catalog.ShapeBatchVideo:
		return o.runBatchCandidates(ctx, t, in)
	case catalog.ShapeFreeText:
		return o.runTextToImage(ctx, in)
	case catalog.ShapeGallery:
		return o.runGallery(ctx, t, in)
	case catalog.ShapeTwoStep:
		return o.runTwoStep(ctx, t, in)
	default:
		return o.runEdit(ctx, t, in)
	}
}

// runTemplated normalizes the user fields to uppercase ASCII, renders the
// prompt template, and issues one edit over exactly two images.
func (o *Orchestrator) runTemplated(ctx context.Context, t catalog.Transformation, in Input) (outcome, error) {
	out := outcome{pipeline: "templated"}
	fields := catalog.NormalizeFields(in.Fields)
	prompt, err := catalog.RenderTemplate(t.Prompt, fields)
	if err != nil {
		return out, domain.NewValidationError(err.Error())
	}
	content, err := o.gw.EditImage(ctx, prompt, []domain.ImagePayload{*in.Primary, *in.Secondary}, nil)
	if err != nil {
		return out, err
	}
	out.content = content
	return out, nil
}

// runLookbook composes the scene description and quality suffix into the
// catalog prompt and fans out a user-chosen number of variants. Results are
// watermarked and held as the current set rather than pushed to history.
func (o *Orchestrator) runLookbook(ctx context.Context, t catalog.Transformation, in Input) (outcome, error) {
	out := outcome{pipeline: "lookbook"}
	prompt := t.Prompt + strings.TrimSpace(in.Prompt) + in.Quality.PromptSuffix()
	count := in.BatchCount
	if count < 1 {
		count = 1
	}
	if count > catalog.BatchCandidateCount {
		count = catalog.BatchCandidateCount
	}
	urls, err := o.gw.GenerateBatchEdits(ctx, prompt, in.Gallery, count)
	if err != nil {
		return out, err
	}
	out.lookbook = o.markAll(ctx, urls)
	return out, nil
}

// runBatchCandidates fans out the fixed candidate count and parks the
// watermarked results for the user to pick from.
func (o *Orchestrator) runBatchCandidates(ctx context.Context, t catalog.Transformation, in Input) (outcome, error) {
	out := outcome{pipeline: "batch_candidates"}
	prompt := catalog.ResolvePrompt(t, in.Prompt)
	urls, err := o.gw.GenerateBatchEdits(ctx, prompt, in.Gallery, catalog.BatchCandidateCount)
	if err != nil {
		return out, err
	}
	out.candidates = o.markAll(ctx, urls)
	return out, nil
}

func (o *Orchestrator) runTextToImage(ctx context.Context, in Input) (outcome, error) {
	out := outcome{pipeline: "text_to_image"}
	content, err := o.gw.GenerateImageFromText(ctx, strings.TrimSpace(in.Prompt), in.Aspect)
	if err != nil {
		return out, err
	}
	out.content = content
	return out, nil
}

func (o *Orchestrator) runGallery(ctx context.Context, t catalog.Transformation, in Input) (outcome, error) {
	out := outcome{pipeline: "gallery"}
	content, err := o.gw.EditImage(ctx, t.Prompt, in.Gallery, nil)
	if err != nil {
		return out, err
	}
	out.content = content
	return out, nil
}

// runTwoStep derives a line-art intermediate from the primary image, then
// composites the secondary image over it with the dedicated second prompt.
// Step 1 yielding no image is fatal; step 2 is never attempted without a
// valid intermediate.
func (o *Orchestrator) runTwoStep(ctx context.Context, t catalog.Transformation, in Input) (outcome, error) {
	out := outcome{pipeline: "two_step"}
	step1, err := o.gw.EditImage(ctx, t.Prompt, []domain.ImagePayload{*in.Primary}, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNoImageReturned) {
			return out, domain.NewPipelineStepError(o.translate("error.step_one_failed"), err)
		}
		return out, err
	}

	intermediate := o.marker.Apply(ctx, step1.ImageURL)
	interPayload, err := domain.ParseDataURL(intermediate)
	if err != nil {
		return out, domain.NewPipelineStepError(o.translate("error.step_one_failed"), err)
	}

	resized, err := imgutil.ResizeToMatch(*in.Secondary, *in.Primary)
	if err != nil {
		o.logger.Warn().Err(err).Msg("orchestrator: secondary resize failed, using original")
		resized = *in.Secondary
	}

	step2, err := o.gw.EditImage(ctx, t.StepTwoPrompt, []domain.ImagePayload{interPayload, resized}, nil)
	if err != nil {
		return out, err
	}
	step2.SecondaryImageURL = intermediate
	out.content = step2
	return out, nil
}

// runEdit is the default single or dual image edit, mask included when the
// mask tool was used.
func (o *Orchestrator) runEdit(ctx context.Context, t catalog.Transformation, in Input) (outcome, error) {
	out := outcome{pipeline: "edit"}
	prompt := catalog.ResolvePrompt(t, in.Prompt)
	images := []domain.ImagePayload{*in.Primary}
	if in.Secondary != nil && !in.Secondary.IsZero() {
		images = append(images, *in.Secondary)
	}
	var mask *domain.ImagePayload
	if t.SupportsMask && in.Mask != nil && !in.Mask.IsZero() {
		mask = in.Mask
	}
	content, err := o.gw.EditImage(ctx, prompt, images, mask)
	if err != nil {
		return out, err
	}
	out.content = content
	return out, nil
}

// runVideo drives the long-running video job and stores the downloaded bytes
// under a fresh key so history eviction can release them later.
func (o *Orchestrator) runVideo(ctx context.Context, prompt string, image *domain.ImagePayload, onProgress gateway.ProgressFunc) (outcome, error) {
	out := outcome{pipeline: "video"}
	if o.videos == nil {
		return out, &domain.GenerationError{
			Class:   domain.ErrorClassUnknown,
			Message: o.translate("error.video_unavailable"),
		}
	}
	data, mimeType, err := o.gw.GenerateVideo(ctx, prompt, image, domain.AspectPortrait, onProgress)
	if err != nil {
		return out, err
	}
	key := videoKey(mimeType)
	if _, err := o.videos.Write(ctx, key, data); err != nil {
		return out, &domain.GenerationError{
			Class:   domain.ErrorClassUnknown,
			Message: o.translate("error.video_store_failed"),
			Cause:   err,
		}
	}
	out.content = &domain.GeneratedContent{
		VideoKey: key,
		VideoURL: "/v1/videos/" + key,
	}
	return out, nil
}

func (o *Orchestrator) markAll(ctx context.Context, urls []string) []string {
	marked := make([]string, len(urls))
	for i, u := range urls {
		marked[i] = o.marker.Apply(ctx, u)
	}
	return marked
}
