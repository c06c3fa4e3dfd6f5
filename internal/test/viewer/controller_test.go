package viewer_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"virtual-tour-backend/internal/client"
	"virtual-tour-backend/internal/events"
	"virtual-tour-backend/internal/handlers"
	"virtual-tour-backend/internal/models"
	"virtual-tour-backend/internal/pipeline"
	"virtual-tour-backend/internal/store"
	"virtual-tour-backend/internal/viewer"
)

func fastPolling() viewer.Polling {
	return viewer.Polling{
		TourInterval: 5 * time.Millisecond,
		RoomInterval: 5 * time.Millisecond,
		ViewerDelay:  time.Millisecond,
	}
}

// startServer brings up the tour API over httptest with a fast pipeline.
func startServer(t *testing.T, detector pipeline.RoomDetector) (*httptest.Server, *store.MemStore, *pipeline.Runner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	memStore := store.NewMemStore()
	hub := events.NewHub()
	timing := pipeline.Timing{
		StartDelay:    time.Millisecond,
		AnalysisDelay: time.Millisecond,
		DepthDelay:    time.Millisecond,
		AssemblyDelay: time.Millisecond,
		CompleteDelay: time.Millisecond,
		DetectTimeout: time.Second,
	}
	runner := pipeline.NewRunnerWithTiming(memStore, detector, hub, timing)

	toursHandler := handlers.NewToursHandler(memStore)
	roomsHandler := handlers.NewRoomsHandler(memStore)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/tours", toursHandler.CreateTour)
	api.GET("/tours/:id", toursHandler.GetTour)
	api.GET("/tours/:id/rooms", roomsHandler.GetRooms)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, memStore, runner
}

func markProcessing(t *testing.T, s *store.MemStore, tourID, photos int) {
	t.Helper()
	for i := 0; i < photos; i++ {
		s.CreatePhoto(models.Photo{TourID: tourID, Filename: "p.jpg"})
	}
	status := models.StatusProcessing
	step := models.StepAnalysis
	_, err := s.UpdateTour(tourID, models.TourUpdate{
		TotalPhotos:    &photos,
		Status:         &status,
		ProcessingStep: &step,
	})
	require.NoError(t, err)
}

func TestController_AdoptsRoomsAndLandsOnViewer(t *testing.T) {
	srv, memStore, runner := startServer(t, pipeline.StaticDetector{})

	tour := memStore.CreateTour("Watched tour", "")
	markProcessing(t, memStore, tour.ID, 6)
	require.NoError(t, runner.Start(tour.ID))

	machine := viewer.NewMachine()
	ctrl := viewer.NewControllerWithPolling(machine, client.New(srv.URL), fastPolling())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ctrl.Run(ctx, tour.ID))

	state := machine.Current()
	assert.Equal(t, viewer.SectionViewer, state.Section)
	require.NotNil(t, state.Tour)
	assert.Equal(t, models.StatusCompleted, state.Tour.Status)
	require.Len(t, state.Rooms, 4)
	assert.Equal(t, "Living Room", state.Rooms[0].Name)

	current, ok := state.CurrentRoom()
	require.True(t, ok)
	assert.Equal(t, "Living Room", current.Name)
}

func TestController_SurvivesTransientPollFailure(t *testing.T) {
	srv, memStore, runner := startServer(t, pipeline.StaticDetector{})

	var polls atomic.Int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		resp, err := http.Get(srv.URL + r.URL.Path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, resp.Body)
	}))
	t.Cleanup(flaky.Close)

	tour := memStore.CreateTour("Flaky link", "")
	markProcessing(t, memStore, tour.ID, 4)
	require.NoError(t, runner.Start(tour.ID))

	machine := viewer.NewMachine()
	ctrl := viewer.NewControllerWithPolling(machine, client.New(flaky.URL), fastPolling())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, ctrl.Run(ctx, tour.ID))

	state := machine.Current()
	assert.Equal(t, viewer.SectionViewer, state.Section)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

type brokenDetector struct{}

func (brokenDetector) Detect(ctx context.Context, photos []models.Photo) ([]pipeline.RoomDraft, error) {
	return nil, context.DeadlineExceeded
}

func TestController_FailedTourIsTerminal(t *testing.T) {
	srv, memStore, runner := startServer(t, brokenDetector{})

	tour := memStore.CreateTour("Doomed tour", "")
	markProcessing(t, memStore, tour.ID, 3)
	require.NoError(t, runner.Start(tour.ID))

	machine := viewer.NewMachine()
	ctrl := viewer.NewControllerWithPolling(machine, client.New(srv.URL), fastPolling())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := ctrl.Run(ctx, tour.ID)
	assert.ErrorIs(t, err, viewer.ErrTourFailed)

	// The processing screen stays up; the failure is the display state.
	state := machine.Current()
	assert.Equal(t, viewer.SectionProcessing, state.Section)
	require.NotNil(t, state.Tour)
	assert.Equal(t, models.StatusFailed, state.Tour.Status)
}
