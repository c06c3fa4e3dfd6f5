package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"virtual-tour-backend/internal/events"
	"virtual-tour-backend/internal/models"
	"virtual-tour-backend/internal/pipeline"
	"virtual-tour-backend/internal/storage"
	"virtual-tour-backend/internal/store"
)

type UploadHandler struct {
	store    store.Store
	files    *storage.Local
	runner   *pipeline.Runner
	hub      *events.Hub
	maxFiles int
	maxBytes int64
}

func NewUploadHandler(s store.Store, files *storage.Local, runner *pipeline.Runner, hub *events.Hub, maxFiles int, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		store:    s,
		files:    files,
		runner:   runner,
		hub:      hub,
		maxFiles: maxFiles,
		maxBytes: maxBytes,
	}
}

// Upload godoc
// @Summary     Upload tour photos
// @Description Uploads up to 50 JPEG/PNG photos (10MB each) for a tour.
// @Description The whole batch is validated before anything is stored; a
// @Description single bad file rejects the request with zero photos created.
// @Description On success the tour flips to processing and the pipeline is
// @Description scheduled once, fire-and-forget.
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Param       id path int true "Tour ID"
// @Param       photos formData file true "Photo files (multiple allowed)"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/tours/{id}/photos [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}

	tour, err := h.store.GetTour(id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "tour not found"})
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil || len(form.File["photos"]) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files uploaded"})
		return
	}
	files := form.File["photos"]

	if len(files) > h.maxFiles {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "too many files",
			Message: fmt.Sprintf("at most %d files per upload, got %d", h.maxFiles, len(files)),
		})
		return
	}

	// Validate the whole batch before touching disk or the store, so a
	// rejected request creates zero photo records. Only a sniff-sized
	// prefix of each file is read here; bodies stream to disk afterwards.
	for _, file := range files {
		if file.Size > h.maxBytes {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "file too large",
				Message: fmt.Sprintf("%s exceeds the %d byte limit", file.Filename, h.maxBytes),
			})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to read upload",
				Message: err.Error(),
			})
			return
		}
		// Sniff the actual content; the client-declared type is not trusted.
		mtype, err := mimetype.DetectReader(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to read upload",
				Message: err.Error(),
			})
			return
		}
		if !mtype.Is("image/jpeg") && !mtype.Is("image/png") {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "unsupported file type",
				Message: fmt.Sprintf("%s is %s; only JPEG and PNG files are allowed", file.Filename, mtype.String()),
			})
			return
		}
	}

	stored := make([]storage.StoredFile, 0, len(files))
	cleanup := func() {
		for _, sf := range stored {
			if err := h.files.Remove(sf.Filename); err != nil {
				log.Printf("upload: orphaned file %s not removed: %v", sf.Filename, err)
			}
		}
	}
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			cleanup()
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to read upload",
				Message: err.Error(),
			})
			return
		}
		sf, err := h.files.Save(file.Filename, src)
		src.Close()
		if err != nil {
			cleanup()
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to store file",
				Message: err.Error(),
			})
			return
		}
		stored = append(stored, sf)
	}

	photos := make([]models.Photo, 0, len(files))
	for i, file := range files {
		photo := h.store.CreatePhoto(models.Photo{
			TourID:       id,
			Filename:     stored[i].Filename,
			OriginalName: file.Filename,
			URL:          stored[i].URL,
		})
		photos = append(photos, photo)
	}

	total := tour.TotalPhotos + len(files)
	status := models.StatusProcessing
	step := models.StepAnalysis
	if _, err := h.store.UpdateTour(id, models.TourUpdate{
		TotalPhotos:    &total,
		Status:         &status,
		ProcessingStep: &step,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update tour"})
		return
	}

	h.hub.Publish(id, "upload_completed", events.UploadCompletedPayload(id, len(files)))

	// Fire and forget; the runner supervises the run from here.
	if err := h.runner.Start(id); err != nil {
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			log.Printf("upload: tour %d pipeline already running, not rescheduled", id)
		} else {
			log.Printf("upload: tour %d pipeline not scheduled: %v", id, err)
		}
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Photos:  photos,
		Message: fmt.Sprintf("%d photos uploaded successfully", len(files)),
	})
}
