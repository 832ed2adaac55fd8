// Package video orchestrates one video-generation job at a time: submission,
// polling the long-running operation, artifact retrieval, and classification
// of terminal failures.
package video

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"promovideo/internal/assets"
	"promovideo/internal/domain/promo"
	"promovideo/internal/infra"
	"promovideo/internal/providers/genai"
)

// State is the orchestrator's lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Gate is the external capability gate. The orchestrator reads it before
// submission and calls ForgetCredential when the API rejects the key.
type Gate interface {
	Supported() bool
	HasCredential() bool
	ForgetCredential()
}

// ReferenceMode selects how the reference images condition the job.
type ReferenceMode string

const (
	// ModeSingleImage conditions the job on one image; the requested aspect
	// ratio is honored as given.
	ModeSingleImage ReferenceMode = "single_image"
	// ModeMultiImageAsset submits each image as an auxiliary asset
	// reference. The remote API only supports the landscape ratio in this
	// mode, so the user's choice is overridden.
	ModeMultiImageAsset ReferenceMode = "multi_image_asset"
)

// Failure is a classified terminal job failure.
type Failure struct {
	Kind    promo.FailureKind
	Message string
}

// Result is the terminal outcome of one job.
type Result struct {
	State       State
	Mode        ReferenceMode
	AspectRatio promo.AspectRatio
	VideoData   []byte
	MIMEType    string
	Failure     *Failure
}

// ErrJobInProgress is returned when a submission arrives while another job is
// still submitting or polling. A second concurrent job is disallowed rather
// than silently orphaning the first handle.
var ErrJobInProgress = errors.New("a generation job is already running")

// Options configures an Orchestrator.
type Options struct {
	Client *genai.Client
	Gate   Gate
	Logger infra.Logger
	// PollInterval defaults to 10s.
	PollInterval time.Duration
	// MaxPollAttempts bounds the poll loop; exceeding it yields a Timeout
	// failure. Defaults to 60.
	MaxPollAttempts int
}

// Orchestrator drives Idle → Submitting → Polling → Succeeded|Failed. All
// three failure kinds leave it in a clean Failed state; a fresh Submit is
// always possible without explicit reset.
type Orchestrator struct {
	client          *genai.Client
	gate            Gate
	logger          infra.Logger
	pollInterval    time.Duration
	maxPollAttempts int

	mu     sync.Mutex
	state  State
	status string
	token  string
	result *Result
}

func New(opts Options) *Orchestrator {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	attempts := opts.MaxPollAttempts
	if attempts <= 0 {
		attempts = 60
	}
	return &Orchestrator{
		client:          opts.Client,
		gate:            opts.Gate,
		logger:          opts.Logger,
		pollInterval:    interval,
		maxPollAttempts: attempts,
		state:           StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Status returns the human-readable progress string for the active job.
func (o *Orchestrator) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Result returns the terminal outcome of the last finished job, or nil while
// no job has finished since the last submission.
func (o *Orchestrator) Result() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Abandon invalidates any in-flight job. The poll loop notices the stale
// token and stops without mutating state. Called on wizard reset.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.token = ""
	if o.state == StateSubmitting || o.state == StatePolling {
		o.state = StateIdle
		o.status = ""
	}
}

// Submit validates the inputs, submits the job, polls the operation handle to
// completion, and retrieves the artifact. Validation problems and a job
// already in flight are returned as errors before any remote call; every
// remote failure is classified into the returned Result instead.
func (o *Orchestrator) Submit(ctx context.Context, images []assets.MediaAsset, prompt string, aspect promo.AspectRatio) (*Result, error) {
	if len(images) < 1 || len(images) > assets.SelectionLimit {
		return nil, promo.Validationf("select between 1 and %d reference images (got %d)", assets.SelectionLimit, len(images))
	}
	if prompt == "" {
		return nil, promo.Validationf("the video prompt is empty")
	}
	if !o.gate.Supported() {
		return nil, promo.Validationf("video generation is not available in this environment")
	}
	if !o.gate.HasCredential() {
		return nil, promo.Validationf("no API credential is configured")
	}

	mode := ModeSingleImage
	if len(images) > 1 {
		mode = ModeMultiImageAsset
		// Multi-reference jobs only support the landscape ratio.
		aspect = promo.AspectLandscape
	}
	if aspect == "" {
		aspect = promo.AspectLandscape
	}

	token, err := o.begin()
	if err != nil {
		return nil, err
	}

	req := genai.VideoGenerationRequest{
		Prompt:      prompt,
		AspectRatio: string(aspect),
	}
	if mode == ModeSingleImage {
		req.Image = &genai.InlineImage{MIMEType: images[0].MIMEType, Data: images[0].Data}
	} else {
		for _, img := range images {
			req.ReferenceImages = append(req.ReferenceImages, genai.InlineImage{MIMEType: img.MIMEType, Data: img.Data})
		}
	}

	o.setStatus(token, "Submitting generation request…")
	opName, err := o.client.StartVideoGeneration(ctx, req)
	if err != nil {
		return o.fail(token, mode, aspect, err)
	}

	o.transition(token, StatePolling)
	result, err := o.poll(ctx, token, mode, aspect, opName)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) poll(ctx context.Context, token string, mode ReferenceMode, aspect promo.AspectRatio, opName string) (*Result, error) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			o.Abandon()
			return nil, ctx.Err()
		case <-ticker.C:
		}

		if !o.tokenCurrent(token) {
			return nil, context.Canceled
		}
		if attempt > o.maxPollAttempts {
			return o.failKind(token, mode, aspect, promo.FailureTimeout,
				"the generation job did not finish in time")
		}

		o.setStatus(token, "Checking status…")
		op, err := o.client.Operation(ctx, opName)
		if err != nil {
			return o.fail(token, mode, aspect, err)
		}
		if !op.Done {
			continue
		}

		if opErr := op.Err(); opErr != nil {
			return o.fail(token, mode, aspect, opErr)
		}
		uri := op.VideoURI()
		if uri == "" {
			return o.failKind(token, mode, aspect, promo.FailureUnclassified,
				"generation succeeded but returned no video artifact")
		}

		o.setStatus(token, "Downloading video…")
		data, mime, err := o.client.Download(ctx, uri)
		if err != nil {
			return o.fail(token, mode, aspect, err)
		}
		if mime == "" {
			mime = "video/mp4"
		}
		return o.succeed(token, mode, aspect, data, mime)
	}
}

func (o *Orchestrator) begin() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting || o.state == StatePolling {
		return "", ErrJobInProgress
	}
	token := uuid.NewString()
	o.token = token
	o.state = StateSubmitting
	o.status = ""
	o.result = nil
	return token, nil
}

func (o *Orchestrator) tokenCurrent(token string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.token == token
}

func (o *Orchestrator) setStatus(token, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.token == token {
		o.status = status
	}
}

func (o *Orchestrator) transition(token string, state State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.token == token {
		o.state = state
	}
}

func (o *Orchestrator) succeed(token string, mode ReferenceMode, aspect promo.AspectRatio, data []byte, mime string) (*Result, error) {
	result := &Result{
		State:       StateSucceeded,
		Mode:        mode,
		AspectRatio: aspect,
		VideoData:   data,
		MIMEType:    mime,
	}
	o.finish(token, result)
	o.logger.Info().Str("mode", string(mode)).Int("bytes", len(data)).Msg("video: generation succeeded")
	return result, nil
}

// fail classifies err, runs the recovery hook for invalid credentials, and
// records the terminal result.
func (o *Orchestrator) fail(token string, mode ReferenceMode, aspect promo.AspectRatio, err error) (*Result, error) {
	kind := classify(err)
	if kind == promo.FailureInvalidCredential {
		o.gate.ForgetCredential()
	}
	o.logger.Warn().Err(err).Str("kind", string(kind)).Msg("video: generation failed")
	return o.failKind(token, mode, aspect, kind, err.Error())
}

func (o *Orchestrator) failKind(token string, mode ReferenceMode, aspect promo.AspectRatio, kind promo.FailureKind, msg string) (*Result, error) {
	result := &Result{
		State:       StateFailed,
		Mode:        mode,
		AspectRatio: aspect,
		Failure:     &Failure{Kind: kind, Message: msg},
	}
	o.finish(token, result)
	return result, nil
}

func (o *Orchestrator) finish(token string, result *Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.token != token {
		return
	}
	o.state = result.State
	o.status = ""
	o.result = result
	o.token = ""
}

func classify(err error) promo.FailureKind {
	switch {
	case genai.IsQuota(err):
		return promo.FailureQuota
	case genai.IsInvalidCredential(err):
		return promo.FailureInvalidCredential
	default:
		return promo.FailureUnclassified
	}
}
