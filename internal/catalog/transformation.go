package catalog

import "fmt"

// Shape selects the pipeline variant a transformation runs through. Exactly
// one shape applies per transformation, which keeps illegal descriptor
// combinations (two-step plus gallery, for instance) unrepresentable.
type Shape int

const (
	// ShapeFreeText generates from user-supplied text only, no input image.
	ShapeFreeText Shape = iota
	// ShapeSingle edits a single primary image, optionally mask-guided.
	ShapeSingle
	// ShapeDualRequired edits with both a primary and a secondary image.
	ShapeDualRequired
	// ShapeDualOptional edits with a primary image and an optional secondary.
	ShapeDualOptional
	// ShapeGallery edits a bounded set of uploaded images in one call.
	ShapeGallery
	// ShapeLookbook generates a user-chosen number of outfit variants from a
	// gallery plus a free-text scene description.
	ShapeLookbook
	// ShapeTwoStep runs a line-art step on the primary image, then composites
	// the secondary image over the intermediate with a dedicated prompt.
	ShapeTwoStep
	// ShapeTemplateFields substitutes normalized user fields into the prompt
	// template before a single dual-image edit.
	ShapeTemplateFields
	// ShapeBatchVideo generates four candidates from a gallery, then animates
	// the one the user picks.
	ShapeBatchVideo
)

func (s Shape) String() string {
	switch s {
	case ShapeFreeText:
		return "free_text"
	case ShapeSingle:
		return "single"
	case ShapeDualRequired:
		return "dual_required"
	case ShapeDualOptional:
		return "dual_optional"
	case ShapeGallery:
		return "gallery"
	case ShapeLookbook:
		return "lookbook"
	case ShapeTwoStep:
		return "two_step"
	case ShapeTemplateFields:
		return "template_fields"
	case ShapeBatchVideo:
		return "batch_video"
	default:
		return "unknown"
	}
}

// CustomPrompt marks transformations whose instruction comes from the user
// instead of the catalog.
const CustomPrompt = "CUSTOM_PROMPT"

// BatchCandidateCount is the fixed fan-out for the pick-your-favorite flows.
const BatchCandidateCount = 4

// Transformation describes one user-selectable effect and its input shape.
// Descriptors are immutable; the registry hands out copies of the catalog.
type Transformation struct {
	Key      string `json:"key"`
	TitleKey string `json:"titleKey"`

	// Prompt is a fixed instruction, a {{token}} template (template-fields
	// shape), or the CustomPrompt sentinel.
	Prompt string `json:"-"`

	Shape Shape `json:"shape"`

	// MaxImages bounds the gallery upload for gallery-shaped transformations.
	MaxImages int `json:"maxImages,omitempty"`

	// StepTwoPrompt drives the compositing call of the two-step shape.
	StepTwoPrompt string `json:"-"`

	// VideoPrompt animates the chosen candidate of the batch-video shape.
	VideoPrompt string `json:"-"`

	// Fields lists the template tokens that must be supplied, in display order.
	Fields []string `json:"fields,omitempty"`

	// SupportsMask enables the mask editor for this transformation.
	SupportsMask bool `json:"supportsMask,omitempty"`
}

// Validate enforces the per-shape descriptor invariants.
func (t Transformation) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("transformation missing key")
	}
	if t.Prompt == "" {
		return fmt.Errorf("transformation %s: missing prompt", t.Key)
	}

	if t.MaxImages > 0 && t.Shape != ShapeGallery && t.Shape != ShapeLookbook && t.Shape != ShapeBatchVideo {
		return fmt.Errorf("transformation %s: maxImages is only valid for gallery shapes", t.Key)
	}
	if t.StepTwoPrompt != "" && t.Shape != ShapeTwoStep {
		return fmt.Errorf("transformation %s: stepTwoPrompt is only valid for the two-step shape", t.Key)
	}
	if t.VideoPrompt != "" && t.Shape != ShapeBatchVideo {
		return fmt.Errorf("transformation %s: videoPrompt is only reachable from the batch-video shape", t.Key)
	}

	switch t.Shape {
	case ShapeGallery, ShapeLookbook, ShapeBatchVideo:
		if t.MaxImages <= 0 {
			return fmt.Errorf("transformation %s: gallery shape requires maxImages", t.Key)
		}
	case ShapeTwoStep:
		if t.StepTwoPrompt == "" {
			return fmt.Errorf("transformation %s: two-step shape requires stepTwoPrompt", t.Key)
		}
	case ShapeTemplateFields:
		if len(t.Fields) == 0 {
			return fmt.Errorf("transformation %s: template-fields shape requires fields", t.Key)
		}
	}
	if t.Shape == ShapeBatchVideo && t.VideoPrompt == "" {
		return fmt.Errorf("transformation %s: batch-video shape requires videoPrompt", t.Key)
	}
	return nil
}
