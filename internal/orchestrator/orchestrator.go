package orchestrator

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/catalog"
	"studio/internal/domain"
	"studio/internal/gateway"
	"studio/internal/history"
	"studio/internal/infra"
)

// State identifies where the orchestrator is in its generation lifecycle.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateRunning           State = "running"
	StateAwaitingSelection State = "awaiting_selection"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// Gateway is the slice of the model gateway the orchestrator drives.
type Gateway interface {
	EditImage(ctx context.Context, prompt string, images []domain.ImagePayload, mask *domain.ImagePayload) (*domain.GeneratedContent, error)
	GenerateImageFromText(ctx context.Context, prompt string, aspect domain.AspectRatio) (*domain.GeneratedContent, error)
	GenerateBatchEdits(ctx context.Context, prompt string, images []domain.ImagePayload, count int) ([]string, error)
	GenerateVideo(ctx context.Context, prompt string, image *domain.ImagePayload, aspect domain.AspectRatio, onProgress gateway.ProgressFunc) ([]byte, string, error)
}

// Marker watermarks a finished image. It never fails outward.
type Marker interface {
	Apply(ctx context.Context, imageURL string) string
}

// BlobStore persists video bytes between generation and history eviction.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// AuditRecord summarizes one finished generation for the audit trail.
type AuditRecord struct {
	SessionID         string
	TransformationKey string
	Pipeline          string
	Status            string
	ErrorClass        string
	Elapsed           time.Duration
}

// AuditSink records finished generations. Implementations are best-effort;
// failures are logged and never block the pipeline.
type AuditSink interface {
	RecordGeneration(ctx context.Context, rec AuditRecord) error
}

// Input is the user-supplied working set for the next generation.
type Input struct {
	Prompt     string
	Fields     map[string]string
	Primary    *domain.ImagePayload
	Secondary  *domain.ImagePayload
	Gallery    []domain.ImagePayload
	Mask       *domain.ImagePayload
	Aspect     domain.AspectRatio
	Quality    domain.QualityTier
	BatchCount int
}

func (in Input) clone() Input {
	out := in
	if in.Fields != nil {
		out.Fields = make(map[string]string, len(in.Fields))
		for k, v := range in.Fields {
			out.Fields[k] = v
		}
	}
	if in.Gallery != nil {
		out.Gallery = append([]domain.ImagePayload(nil), in.Gallery...)
	}
	return out
}

// Snapshot is the observable orchestrator state handed to the UI.
type Snapshot struct {
	State             State                    `json:"state"`
	TransformationKey string                   `json:"transformationKey,omitempty"`
	IsLoading         bool                     `json:"isLoading"`
	LoadingMessage    string                   `json:"loadingMessage,omitempty"`
	Error             string                   `json:"error,omitempty"`
	ErrorClass        string                   `json:"errorClass,omitempty"`
	Result            *domain.GeneratedContent `json:"result,omitempty"`
	CandidateOptions  []string                 `json:"candidateOptions,omitempty"`
	SelectedCandidate string                   `json:"selectedCandidate,omitempty"`
	LookbookResults   []string                 `json:"lookbookResults,omitempty"`
}

// Options wires an Orchestrator. Gateway, Registry and History are required;
// Marker defaults to a pass-through and Audit may be nil when the deployment
// has no database. Videos may be nil on deployments without video storage, in
// which case the video pipeline fails instead of producing an empty result.
type Options struct {
	Gateway   Gateway
	Marker    Marker
	Registry  *catalog.Registry
	History   *history.Store
	Videos    BlobStore
	Audit     AuditSink
	Logger    *infra.Logger
	Translate func(key string) string
	SessionID string
}

// Orchestrator is the state machine driving one session's generations. Only
// one generation result is ever applied at a time: each run captures an epoch
// and a finishing run whose epoch is stale discards its result instead of
// overwriting newer state.
type Orchestrator struct {
	gw        Gateway
	marker    Marker
	registry  *catalog.Registry
	history   *history.Store
	videos    BlobStore
	audit     AuditSink
	logger    *infra.Logger
	translate func(key string) string
	sessionID string

	mu                sync.Mutex
	epoch             uint64
	state             State
	current           *catalog.Transformation
	input             Input
	loading           bool
	loadingMessage    string
	errMsg            string
	errClass          string
	result            *domain.GeneratedContent
	candidates        []string
	selectedCandidate string
	lookbook          []string
	videoCancel       context.CancelFunc
}

type passthroughMarker struct{}

func (passthroughMarker) Apply(_ context.Context, imageURL string) string { return imageURL }

// New constructs an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	marker := opts.Marker
	if marker == nil {
		marker = passthroughMarker{}
	}
	translate := opts.Translate
	if translate == nil {
		translate = func(key string) string { return key }
	}
	return &Orchestrator{
		gw:        opts.Gateway,
		marker:    marker,
		registry:  opts.Registry,
		history:   opts.History,
		videos:    opts.Videos,
		audit:     opts.Audit,
		logger:    logger,
		translate: translate,
		sessionID: opts.SessionID,
		state:     StateIdle,
	}
}

// SelectTransformation switches the active transformation and clears any
// transient result state from the previous one.
func (o *Orchestrator) SelectTransformation(key string) error {
	t, err := o.registry.Resolve(key)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = &t
	o.state = StateIdle
	o.errMsg, o.errClass = "", ""
	o.result = nil
	o.candidates = nil
	o.selectedCandidate = ""
	o.lookbook = nil
	return nil
}

// SetInput replaces the working input set for the next generation.
func (o *Orchestrator) SetInput(in Input) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.input = in.clone()
}

// SelectCandidate records the user's pick from a batch-candidate set.
func (o *Orchestrator) SelectCandidate(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateAwaitingSelection {
		return domain.NewValidationError(o.translate("error.no_candidates"))
	}
	for _, c := range o.candidates {
		if c == url {
			o.selectedCandidate = url
			return nil
		}
	}
	return domain.NewValidationError(o.translate("error.unknown_candidate"))
}

// Snapshot returns a copy of the observable state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := Snapshot{
		State:             o.state,
		IsLoading:         o.loading,
		LoadingMessage:    o.loadingMessage,
		Error:             o.errMsg,
		ErrorClass:        o.errClass,
		SelectedCandidate: o.selectedCandidate,
		CandidateOptions:  append([]string(nil), o.candidates...),
		LookbookResults:   append([]string(nil), o.lookbook...),
	}
	if o.current != nil {
		snap.TransformationKey = o.current.Key
	}
	if o.result != nil {
		r := *o.result
		snap.Result = &r
	}
	return snap
}

// Reset cancels any in-flight video poll, discards transient state, and
// clears the session history, releasing stored video handles.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.epoch++
	if o.videoCancel != nil {
		o.videoCancel()
		o.videoCancel = nil
	}
	o.state = StateIdle
	o.input = Input{}
	o.loading = false
	o.loadingMessage = ""
	o.errMsg, o.errClass = "", ""
	o.result = nil
	o.candidates = nil
	o.selectedCandidate = ""
	o.lookbook = nil
	o.mu.Unlock()

	if o.history != nil {
		o.history.Clear()
	}
}

// History returns the session's history store.
func (o *Orchestrator) History() *history.Store {
	return o.history
}

// Generate validates the current input against the active transformation and
// drives the matching pipeline variant to completion. The terminal error, if
// any, is also recorded in the observable state.
func (o *Orchestrator) Generate(ctx context.Context) error {
	o.mu.Lock()
	if o.current == nil {
		err := domain.NewValidationError(o.translate("error.transformation_required"))
		o.applyFailureLocked(err)
		o.mu.Unlock()
		return err
	}
	t := *o.current
	in := o.input.clone()
	o.epoch++
	epoch := o.epoch
	o.beginRunLocked(StateValidating, "loading.preparing")
	o.candidates = nil
	o.selectedCandidate = ""
	o.mu.Unlock()

	started := time.Now()
	if err := o.validate(t, in); err != nil {
		o.finish(ctx, epoch, t, started, outcome{}, err)
		return err
	}

	o.setProgress(epoch, StateRunning, "loading.generating")

	out, err := o.runPipeline(ctx, t, in)
	if err == nil && out.content != nil {
		out.content.ImageURL = o.marker.Apply(ctx, out.content.ImageURL)
		if in.Primary != nil && out.content.OriginalImageURL == "" {
			out.content.OriginalImageURL = in.Primary.DataURL()
		}
	}
	o.finish(ctx, epoch, t, started, out, err)
	return err
}

// AnimateCandidate submits the previously selected candidate through the
// video pipeline at the fixed portrait ratio, or generates a video from the
// free-text prompt when no candidate flow is involved. The poll loop is
// cancellable via Reset.
func (o *Orchestrator) AnimateCandidate(ctx context.Context) error {
	o.mu.Lock()
	if o.current == nil {
		err := domain.NewValidationError(o.translate("error.transformation_required"))
		o.applyFailureLocked(err)
		o.mu.Unlock()
		return err
	}
	t := *o.current
	candidate := o.selectedCandidate
	prompt := t.VideoPrompt
	if candidate == "" {
		prompt = o.input.Prompt
	}
	if candidate == "" && prompt == "" {
		err := domain.NewValidationError(o.translate("error.candidate_required"))
		o.applyFailureLocked(err)
		o.mu.Unlock()
		return err
	}
	o.epoch++
	epoch := o.epoch
	videoCtx, cancel := context.WithCancel(ctx)
	o.videoCancel = cancel
	o.beginRunLocked(StateRunning, "loading.video.submitted")
	o.mu.Unlock()
	defer cancel()

	started := time.Now()
	var image *domain.ImagePayload
	if candidate != "" {
		payload, err := domain.ParseDataURL(candidate)
		if err != nil {
			err = domain.NewPipelineStepError(o.translate("error.candidate_unreadable"), err)
			o.finish(ctx, epoch, t, started, outcome{}, err)
			return err
		}
		image = &payload
	}

	onProgress := func(phase gateway.VideoPhase) {
		o.setProgress(epoch, StateRunning, "loading.video."+string(phase))
	}
	out, err := o.runVideo(videoCtx, prompt, image, onProgress)
	if err == nil && candidate != "" {
		out.content.OriginalImageURL = candidate
	}
	o.finish(ctx, epoch, t, started, out, err)
	return err
}

func (o *Orchestrator) beginRunLocked(state State, messageKey string) {
	o.state = state
	o.loading = true
	o.loadingMessage = o.translate(messageKey)
	o.errMsg, o.errClass = "", ""
	o.result = nil
	o.lookbook = nil
}

func (o *Orchestrator) applyFailureLocked(err error) {
	o.state = StateFailed
	o.loading = false
	o.loadingMessage = ""
	o.errMsg = err.Error()
	o.errClass = string(domain.ClassOf(err))
}

func (o *Orchestrator) setProgress(epoch uint64, state State, messageKey string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if epoch != o.epoch {
		return
	}
	o.state = state
	o.loadingMessage = o.translate(messageKey)
}

// finish applies a terminal outcome under the epoch guard. A run superseded
// by a newer generate or reset discards its result entirely; the newer run
// owns the loading indicator and the result slot.
func (o *Orchestrator) finish(ctx context.Context, epoch uint64, t catalog.Transformation, started time.Time, out outcome, err error) {
	o.mu.Lock()
	if epoch != o.epoch {
		o.mu.Unlock()
		o.logger.Debug().Str("transformation", t.Key).Msg("orchestrator: discarding stale result")
		return
	}
	o.loading = false
	o.loadingMessage = ""
	if o.videoCancel != nil {
		o.videoCancel = nil
	}
	var pushed *domain.GeneratedContent
	if err != nil {
		o.applyFailureLocked(err)
	} else {
		o.errMsg, o.errClass = "", ""
		switch {
		case out.candidates != nil:
			o.candidates = out.candidates
			o.selectedCandidate = ""
			o.state = StateAwaitingSelection
		case out.lookbook != nil:
			o.lookbook = out.lookbook
			o.state = StateSucceeded
		default:
			o.result = out.content
			o.state = StateSucceeded
			pushed = out.content
		}
	}
	// Pushed under the lock; the epoch check above covers the push too.
	if pushed != nil && o.history != nil {
		o.history.Push(*pushed)
	}
	o.mu.Unlock()

	o.recordAudit(ctx, t, out, started, err)
}

func (o *Orchestrator) recordAudit(ctx context.Context, t catalog.Transformation, out outcome, started time.Time, err error) {
	if o.audit == nil {
		return
	}
	rec := AuditRecord{
		SessionID:         o.sessionID,
		TransformationKey: t.Key,
		Pipeline:          out.pipeline,
		Status:            "succeeded",
		Elapsed:           time.Since(started),
	}
	if err != nil {
		rec.Status = "failed"
		rec.ErrorClass = string(domain.ClassOf(err))
	}
	if auditErr := o.audit.RecordGeneration(ctx, rec); auditErr != nil {
		o.logger.Warn().Err(auditErr).Msg("orchestrator: audit record failed")
	}
}

func videoKey(mimeType string) string {
	return uuid.NewString() + domain.VideoExtension(mimeType)
}
