package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"virtual-tour-backend/internal/events"
	"virtual-tour-backend/internal/models"
	"virtual-tour-backend/internal/store"
)

var (
	// ErrAlreadyRunning means a pipeline run is already in flight for the
	// tour; the trigger is at-most-once per tour.
	ErrAlreadyRunning = errors.New("pipeline: run already in flight for tour")
	// ErrShuttingDown means the runner no longer accepts new runs.
	ErrShuttingDown = errors.New("pipeline: runner is shutting down")
)

// Timing holds the simulated stage durations and the detector bound.
// Production uses DefaultTiming; tests swap in something fast.
type Timing struct {
	StartDelay    time.Duration
	AnalysisDelay time.Duration
	DepthDelay    time.Duration
	AssemblyDelay time.Duration
	CompleteDelay time.Duration
	DetectTimeout time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		StartDelay:    1 * time.Second,
		AnalysisDelay: 2 * time.Second,
		DepthDelay:    3 * time.Second,
		AssemblyDelay: 2 * time.Second,
		CompleteDelay: 1 * time.Second,
		DetectTimeout: 30 * time.Second,
	}
}

// Runner drives tours through the processing stages. Each run is a
// supervised goroutine: tracked in an active set for idempotency, cancelled
// through the runner's root context, joined on Shutdown, with failures
// recorded per tour. Stage updates to a single tour are strictly sequential;
// runs for different tours interleave freely.
type Runner struct {
	store    store.Store
	detector RoomDetector
	hub      *events.Hub
	timing   Timing

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	active   map[int]struct{}
	failures map[int]error
	closed   bool
}

func NewRunner(s store.Store, detector RoomDetector, hub *events.Hub) *Runner {
	return NewRunnerWithTiming(s, detector, hub, DefaultTiming())
}

func NewRunnerWithTiming(s store.Store, detector RoomDetector, hub *events.Hub, timing Timing) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:    s,
		detector: detector,
		hub:      hub,
		timing:   timing,
		ctx:      ctx,
		cancel:   cancel,
		active:   make(map[int]struct{}),
		failures: make(map[int]error),
	}
}

// Start schedules one pipeline run for the tour and returns immediately.
func (r *Runner) Start(tourID int) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrShuttingDown
	}
	if _, ok := r.active[tourID]; ok {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.active[tourID] = struct{}{}
	delete(r.failures, tourID) // a fresh run supersedes any recorded failure
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.active, tourID)
			r.mu.Unlock()
		}()

		if err := r.sleep(r.timing.StartDelay); err != nil {
			r.fail(tourID, err)
			return
		}
		if err := r.run(tourID); err != nil {
			r.fail(tourID, err)
		}
	}()
	return nil
}

// Running reports whether a run is in flight for the tour.
func (r *Runner) Running(tourID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[tourID]
	return ok
}

// Failure returns the recorded error of the tour's last run, if it failed.
func (r *Runner) Failure(tourID int) (error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err, ok := r.failures[tourID]
	return err, ok
}

// Shutdown stops accepting new runs, cancels in-flight ones and joins them.
// Returns ctx.Err if the runs do not drain in time.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every in-flight run has finished. Test helper; Shutdown
// is the production path.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(tourID int) error {
	tour, err := r.store.GetTour(tourID)
	if err != nil {
		return fmt.Errorf("load tour %d: %w", tourID, err)
	}
	total := tour.TotalPhotos

	// Stage 1: room analysis
	if err := r.sleep(r.timing.AnalysisDelay); err != nil {
		return err
	}
	photos := r.store.PhotosByTour(tourID)
	detectCtx, cancel := context.WithTimeout(r.ctx, r.timing.DetectTimeout)
	drafts, err := r.detector.Detect(detectCtx, photos)
	cancel()
	if err != nil {
		return fmt.Errorf("room detection: %w", err)
	}
	for _, draft := range drafts {
		r.store.CreateRoom(models.Room{
			TourID:     tourID,
			Name:       draft.Name,
			Type:       draft.Type,
			Confidence: draft.Confidence,
			PhotoCount: draft.PhotoCount,
		})
	}
	if err := r.advance(tourID, models.StepAnalysis, stageProcessed(total, 1), total); err != nil {
		return err
	}

	// Stage 2: depth estimation
	if err := r.sleep(r.timing.DepthDelay); err != nil {
		return err
	}
	if err := r.advance(tourID, models.StepDepth, stageProcessed(total, 2), total); err != nil {
		return err
	}

	// Stage 3: tour assembly
	if err := r.sleep(r.timing.AssemblyDelay); err != nil {
		return err
	}
	if err := r.advance(tourID, models.StepAssembly, total, total); err != nil {
		return err
	}

	// Stage 4: complete
	if err := r.sleep(r.timing.CompleteDelay); err != nil {
		return err
	}
	now := time.Now().UTC()
	status := models.StatusCompleted
	step := models.StepCompleted
	if _, err := r.store.UpdateTour(tourID, models.TourUpdate{
		Status:          &status,
		ProcessingStep:  &step,
		ProcessedPhotos: &total,
		CompletedAt:     &now,
	}); err != nil {
		return fmt.Errorf("complete tour %d: %w", tourID, err)
	}
	r.hub.Publish(tourID, "processing_completed", events.ProcessingCompletedPayload(tourID, len(drafts)))
	return nil
}

func (r *Runner) advance(tourID int, step models.ProcessingStep, processed, total int) error {
	if _, err := r.store.UpdateTour(tourID, models.TourUpdate{
		ProcessingStep:  &step,
		ProcessedPhotos: &processed,
	}); err != nil {
		return fmt.Errorf("advance tour %d to %s: %w", tourID, step, err)
	}
	r.hub.Publish(tourID, "stage_advanced", events.StageAdvancedPayload(tourID, step, processed, total))
	return nil
}

func (r *Runner) fail(tourID int, cause error) {
	r.mu.Lock()
	r.failures[tourID] = cause
	r.mu.Unlock()

	status := models.StatusFailed
	step := models.StepFailed
	if _, err := r.store.UpdateTour(tourID, models.TourUpdate{
		Status:         &status,
		ProcessingStep: &step,
	}); err != nil {
		log.Printf("pipeline: tour %d failed (%v) and could not be marked failed: %v", tourID, cause, err)
		return
	}
	r.hub.Publish(tourID, "processing_failed", events.ProcessingFailedPayload(tourID, cause.Error()))
	log.Printf("pipeline: tour %d failed: %v", tourID, cause)
}

// sleep pauses for the stage's simulated duration, waking early if the
// runner is cancelled.
func (r *Runner) sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

// stageProcessed scales the processed count to the actual upload size:
// stage k of 3 reports ceil(k*total/3), so processed never exceeds total.
func stageProcessed(total, stage int) int {
	return (total*stage + 2) / 3
}
