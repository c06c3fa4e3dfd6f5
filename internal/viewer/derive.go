package viewer

import "virtual-tour-backend/internal/models"

// StepState is the display status of one pipeline step on the processing
// screen.
type StepState string

const (
	StepPending StepState = "pending"
	StepActive  StepState = "active"
	StepDone    StepState = "completed"
)

var stepOrder = []models.ProcessingStep{
	models.StepAnalysis,
	models.StepDepth,
	models.StepAssembly,
}

func stepIndex(step models.ProcessingStep) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// StatusOfStep reports how the given step should render for the tour: done
// for everything once the tour completes, active for the current step, done
// for steps already passed, pending otherwise.
func StatusOfStep(tour models.Tour, step models.ProcessingStep) StepState {
	if tour.Status == models.StatusCompleted {
		return StepDone
	}
	if tour.ProcessingStep == step {
		return StepActive
	}
	if stepIndex(step) < stepIndex(tour.ProcessingStep) {
		return StepDone
	}
	return StepPending
}

// StepProgress is the per-step progress bar percentage: 100 for passed
// steps, photo-scaled (capped at 95 so an active bar never looks finished)
// for the current one, 0 for future ones.
func StepProgress(tour models.Tour, step models.ProcessingStep) int {
	current := stepIndex(tour.ProcessingStep)
	idx := stepIndex(step)

	if tour.Status == models.StatusCompleted || idx < current {
		return 100
	}
	if idx == current {
		return min(ProgressPercent(tour), 95)
	}
	return 0
}

// ProgressPercent is processedPhotos over totalPhotos as a percentage.
// Zero-photo tours report zero rather than dividing by zero.
func ProgressPercent(tour models.Tour) int {
	if tour.TotalPhotos <= 0 {
		return 0
	}
	pct := tour.ProcessedPhotos * 100 / tour.TotalPhotos
	if pct > 100 {
		pct = 100
	}
	return pct
}
