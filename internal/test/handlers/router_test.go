package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"virtual-tour-backend/internal/events"
	"virtual-tour-backend/internal/handlers"
	"virtual-tour-backend/internal/pipeline"
	"virtual-tour-backend/internal/storage"
	"virtual-tour-backend/internal/store"
)

// Minimal valid magic bytes; the upload handler sniffs content, not names.
var (
	jpegData = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngData  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
)

type testEnv struct {
	router    *gin.Engine
	store     *store.MemStore
	runner    *pipeline.Runner
	hub       *events.Hub
	uploadDir string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	memStore := store.NewMemStore()
	uploadDir := t.TempDir()
	fileStore, err := storage.NewLocal(uploadDir)
	require.NoError(t, err)

	hub := events.NewHub()
	timing := pipeline.Timing{
		StartDelay:    time.Millisecond,
		AnalysisDelay: time.Millisecond,
		DepthDelay:    time.Millisecond,
		AssemblyDelay: time.Millisecond,
		CompleteDelay: time.Millisecond,
		DetectTimeout: time.Second,
	}
	runner := pipeline.NewRunnerWithTiming(memStore, pipeline.StaticDetector{}, hub, timing)

	toursHandler := handlers.NewToursHandler(memStore)
	uploadHandler := handlers.NewUploadHandler(memStore, fileStore, runner, hub, 50, 10<<20)
	photosHandler := handlers.NewPhotosHandler(memStore)
	roomsHandler := handlers.NewRoomsHandler(memStore)
	eventsHandler := handlers.NewEventsHandler(memStore, hub)

	router := gin.New()
	router.GET("/health", handlers.HealthHandler)
	api := router.Group("/api")
	api.POST("/tours", toursHandler.CreateTour)
	api.GET("/tours/:id", toursHandler.GetTour)
	api.PATCH("/tours/:id", toursHandler.UpdateTour)
	api.POST("/tours/:id/photos", uploadHandler.Upload)
	api.GET("/tours/:id/photos", photosHandler.GetPhotos)
	api.GET("/tours/:id/rooms", roomsHandler.GetRooms)
	api.GET("/tours/:id/events", eventsHandler.Stream)

	return &testEnv{router: router, store: memStore, runner: runner, hub: hub, uploadDir: uploadDir}
}

// multipartRequest builds a POST with each payload as one "photos" part.
func multipartRequest(t *testing.T, url string, filenames []string, payloads [][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for i, name := range filenames {
		part, err := writer.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = part.Write(payloads[i])
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
