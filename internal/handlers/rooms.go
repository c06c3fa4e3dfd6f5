package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"virtual-tour-backend/internal/store"
)

type RoomsHandler struct {
	store store.Store
}

func NewRoomsHandler(s store.Store) *RoomsHandler {
	return &RoomsHandler{store: s}
}

// GetRooms godoc
// @Summary     List a tour's detected rooms
// @Tags        rooms
// @Produce     json
// @Param       id path int true "Tour ID"
// @Success     200 {array} models.Room
// @Router      /api/tours/{id}/rooms [get]
func (h *RoomsHandler) GetRooms(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.store.RoomsByTour(id))
}
