package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/radassist/internal/analysis"
	"github.com/lehigh-university-libraries/radassist/internal/models"
)

// ErrBusy is returned when a submission is attempted while one is in flight.
var ErrBusy = errors.New("analysis already in progress")

// Analyzer performs the single inference call for a submission
type Analyzer interface {
	Ready() error
	Analyze(ctx context.Context, encodedImage, mimeType, notes string) (*models.AnalysisResult, error)
}

// Snapshot is a point-in-time copy of a controller's state
type Snapshot struct {
	State      State                  `json:"state"`
	Image      *models.UploadedImage  `json:"image,omitempty"`
	Notes      string                 `json:"notes"`
	Result     *models.AnalysisResult `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Generation uint64                 `json:"generation"`
}

// CanSubmit mirrors the analyze button: an image is present and nothing is in flight.
func (s Snapshot) CanSubmit() bool {
	return s.Image != nil && s.State != Analyzing
}

// Controller owns the upload → analyze → display workflow for one browser session.
type Controller struct {
	id       string
	analyzer Analyzer

	mu         sync.Mutex
	state      State
	image      *models.UploadedImage
	notes      string
	result     *models.AnalysisResult
	errMsg     string
	generation uint64
	lastActive time.Time
}

func New(id string, analyzer Analyzer) *Controller {
	return &Controller{
		id:         id,
		analyzer:   analyzer,
		state:      Idle,
		lastActive: time.Now(),
	}
}

func (c *Controller) ID() string {
	return c.id
}

// SetImage replaces the current image, clears any result or error and moves to Ready.
// A request still in flight for the previous image will be discarded when it resolves.
func (c *Controller) SetImage(img *models.UploadedImage) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.image = img
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.state = Ready
	c.touch()

	slog.Debug("Image ingested", "session_id", c.id, "mime_type", img.MIMEType, "size", img.Size, "generation", c.generation)
	return c.snapshot()
}

// SetNotes updates the clinical notes. It never changes state; an in-flight request
// keeps the notes it was built with.
func (c *Controller) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = notes
	c.touch()
}

// Submit starts an analysis. Missing image or configuration moves straight to Failed
// without contacting the service. The returned channel is closed once the outcome
// is known.
func (c *Controller) Submit(ctx context.Context) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Analyzing {
		return nil, ErrBusy
	}
	c.touch()

	done := make(chan struct{})

	if c.image == nil {
		c.fail(analysis.ErrNoImage)
		close(done)
		return done, nil
	}
	if err := c.analyzer.Ready(); err != nil {
		c.fail(err)
		close(done)
		return done, nil
	}

	c.generation++
	gen := c.generation
	img := c.image
	notes := c.notes
	c.state = Analyzing
	c.result = nil
	c.errMsg = ""

	slog.Info("Analysis submitted", "session_id", c.id, "generation", gen, "mime_type", img.MIMEType)

	// The request runs to completion even if the caller goes away.
	reqCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		result, err := c.analyzer.Analyze(reqCtx, img.Encoded, img.MIMEType, notes)
		c.complete(gen, result, err)
	}()

	return done, nil
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// LastActive reports when the session was last touched by the user
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) complete(gen uint64, result *models.AnalysisResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != Analyzing {
		slog.Info("Discarding stale analysis response", "session_id", c.id, "generation", gen, "current", c.generation)
		return
	}

	if err != nil {
		c.fail(err)
		return
	}
	c.result = result
	c.errMsg = ""
	c.state = Success
	slog.Info("Analysis stored", "session_id", c.id, "generation", gen)
}

// fail must be called with mu held.
func (c *Controller) fail(err error) {
	c.result = nil
	c.errMsg = analysis.UserMessage(err)
	c.state = Failed
	slog.Warn("Analysis failed", "session_id", c.id, "generation", c.generation, "err", err)
}

func (c *Controller) touch() {
	c.lastActive = time.Now()
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State:      c.state,
		Image:      c.image,
		Notes:      c.notes,
		Error:      c.errMsg,
		Generation: c.generation,
	}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	return s
}
