package pipeline

import (
	"context"
	"math/rand"

	"virtual-tour-backend/internal/models"
)

// RoomDraft is a detected room before the store assigns it an id.
type RoomDraft struct {
	Name       string
	Type       string
	Confidence int
	PhotoCount int
}

// RoomDetector classifies a tour's photos into rooms. The pipeline calls it
// exactly once per tour, during the analysis stage, under a wall-clock
// timeout. A real computer-vision backend slots in here.
type RoomDetector interface {
	Detect(ctx context.Context, photos []models.Photo) ([]RoomDraft, error)
}

// StaticDetector is the stand-in detector: a fixed four-room layout with
// pseudo-random per-room photo counts in [3,8].
type StaticDetector struct{}

func (StaticDetector) Detect(ctx context.Context, photos []models.Photo) ([]RoomDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	drafts := []RoomDraft{
		{Name: "Living Room", Type: "living_room", Confidence: 96},
		{Name: "Kitchen", Type: "kitchen", Confidence: 94},
		{Name: "Master Bedroom", Type: "bedroom", Confidence: 97},
		{Name: "Bathroom", Type: "bathroom", Confidence: 91},
	}
	for i := range drafts {
		drafts[i].PhotoCount = rand.Intn(6) + 3
	}
	return drafts, nil
}
