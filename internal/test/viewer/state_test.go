package viewer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"virtual-tour-backend/internal/models"
	"virtual-tour-backend/internal/viewer"
)

func roomList(n int) []models.Room {
	rooms := make([]models.Room, n)
	for i := range rooms {
		rooms[i] = models.Room{ID: i + 1, TourID: 1, Name: "Room"}
	}
	return rooms
}

func TestNavigation_RoundTripLaw(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7} {
		for start := 0; start < n; start++ {
			s := viewer.NewState()
			s = viewer.Reduce(s, viewer.RoomsAdopted{Rooms: roomList(n)})
			s = viewer.Reduce(s, viewer.GoToRoom{Index: start})
			require.Equal(t, start, s.RoomIndex)

			forward := viewer.Reduce(viewer.Reduce(s, viewer.NextRoom{}), viewer.PreviousRoom{})
			assert.Equal(t, start, forward.RoomIndex, "next then previous, n=%d start=%d", n, start)

			backward := viewer.Reduce(viewer.Reduce(s, viewer.PreviousRoom{}), viewer.NextRoom{})
			assert.Equal(t, start, backward.RoomIndex, "previous then next, n=%d start=%d", n, start)
		}
	}
}

func TestNavigation_Wraparound(t *testing.T) {
	s := viewer.Reduce(viewer.NewState(), viewer.RoomsAdopted{Rooms: roomList(3)})

	s = viewer.Reduce(s, viewer.PreviousRoom{})
	assert.Equal(t, 2, s.RoomIndex)
	s = viewer.Reduce(s, viewer.NextRoom{})
	assert.Equal(t, 0, s.RoomIndex)
}

func TestNavigation_EmptyRoomListIsNoOp(t *testing.T) {
	s := viewer.NewState()

	s = viewer.Reduce(s, viewer.NextRoom{})
	assert.Equal(t, 0, s.RoomIndex)
	s = viewer.Reduce(s, viewer.PreviousRoom{})
	assert.Equal(t, 0, s.RoomIndex)
	s = viewer.Reduce(s, viewer.GoToRoom{Index: 3})
	assert.Equal(t, 0, s.RoomIndex)

	_, ok := s.CurrentRoom()
	assert.False(t, ok)
}

func TestGoToRoom_OutOfRangeRejected(t *testing.T) {
	s := viewer.Reduce(viewer.NewState(), viewer.RoomsAdopted{Rooms: roomList(4)})
	s = viewer.Reduce(s, viewer.GoToRoom{Index: 2})

	s = viewer.Reduce(s, viewer.GoToRoom{Index: 4})
	assert.Equal(t, 2, s.RoomIndex)
	s = viewer.Reduce(s, viewer.GoToRoom{Index: -1})
	assert.Equal(t, 2, s.RoomIndex)
}

func TestRoomsAdopted_ClampsStaleIndex(t *testing.T) {
	s := viewer.Reduce(viewer.NewState(), viewer.RoomsAdopted{Rooms: roomList(5)})
	s = viewer.Reduce(s, viewer.GoToRoom{Index: 4})

	// A shorter list arrives; the stale index resets instead of pointing
	// past the end.
	s = viewer.Reduce(s, viewer.RoomsAdopted{Rooms: roomList(2)})
	assert.Equal(t, 0, s.RoomIndex)
}

func TestUploadQueue(t *testing.T) {
	s := viewer.NewState()

	s = viewer.Reduce(s, viewer.FilesQueued{Names: []string{"a.jpg", "b.jpg"}})
	s = viewer.Reduce(s, viewer.FilesQueued{Names: []string{"c.jpg"}})
	require.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, s.PendingFiles)

	s = viewer.Reduce(s, viewer.FileRemoved{Index: 1})
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, s.PendingFiles)

	s = viewer.Reduce(s, viewer.FileRemoved{Index: 9})
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, s.PendingFiles)

	s = viewer.Reduce(s, viewer.UploadStarted{})
	assert.True(t, s.Uploading)
	s = viewer.Reduce(s, viewer.UploadProgressed{Percent: 40})
	assert.Equal(t, 40, s.UploadProgress)
	s = viewer.Reduce(s, viewer.UploadFinished{})
	assert.False(t, s.Uploading)
	assert.Equal(t, 100, s.UploadProgress)

	s = viewer.Reduce(s, viewer.FilesCleared{})
	assert.Empty(t, s.PendingFiles)
}

func TestSectionTransitions(t *testing.T) {
	s := viewer.NewState()
	assert.Equal(t, viewer.SectionHome, s.Section)

	s = viewer.Reduce(s, viewer.GoToSection{Section: viewer.SectionUpload})
	assert.Equal(t, viewer.SectionUpload, s.Section)
	s = viewer.Reduce(s, viewer.GoToSection{Section: viewer.SectionViewer})
	assert.Equal(t, viewer.SectionViewer, s.Section)
}

func TestDerived_ProgressPercent(t *testing.T) {
	assert.Equal(t, 0, viewer.ProgressPercent(models.Tour{}))
	assert.Equal(t, 50, viewer.ProgressPercent(models.Tour{TotalPhotos: 8, ProcessedPhotos: 4}))
	assert.Equal(t, 100, viewer.ProgressPercent(models.Tour{TotalPhotos: 4, ProcessedPhotos: 9}))
}

func TestDerived_StepStates(t *testing.T) {
	tour := models.Tour{
		Status:          models.StatusProcessing,
		ProcessingStep:  models.StepDepth,
		TotalPhotos:     10,
		ProcessedPhotos: 7,
	}

	assert.Equal(t, viewer.StepDone, viewer.StatusOfStep(tour, models.StepAnalysis))
	assert.Equal(t, viewer.StepActive, viewer.StatusOfStep(tour, models.StepDepth))
	assert.Equal(t, viewer.StepPending, viewer.StatusOfStep(tour, models.StepAssembly))

	assert.Equal(t, 100, viewer.StepProgress(tour, models.StepAnalysis))
	assert.Equal(t, 70, viewer.StepProgress(tour, models.StepDepth))
	assert.Equal(t, 0, viewer.StepProgress(tour, models.StepAssembly))

	// An active bar is capped below 100 until the stage actually passes.
	tour.ProcessedPhotos = 10
	assert.Equal(t, 95, viewer.StepProgress(tour, models.StepDepth))

	tour.Status = models.StatusCompleted
	assert.Equal(t, viewer.StepDone, viewer.StatusOfStep(tour, models.StepAssembly))
	assert.Equal(t, 100, viewer.StepProgress(tour, models.StepAssembly))
}
