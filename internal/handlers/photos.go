package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"virtual-tour-backend/internal/store"
)

type PhotosHandler struct {
	store store.Store
}

func NewPhotosHandler(s store.Store) *PhotosHandler {
	return &PhotosHandler{store: s}
}

// GetPhotos godoc
// @Summary     List a tour's photos
// @Tags        photos
// @Produce     json
// @Param       id path int true "Tour ID"
// @Success     200 {array} models.Photo
// @Router      /api/tours/{id}/photos [get]
func (h *PhotosHandler) GetPhotos(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.store.PhotosByTour(id))
}
