package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"virtual-tour-backend/internal/models"
	"virtual-tour-backend/internal/store"
)

type ToursHandler struct {
	store store.Store
}

func NewToursHandler(s store.Store) *ToursHandler {
	return &ToursHandler{store: s}
}

// CreateTour godoc
// @Summary     Create a tour
// @Description Creates a new virtual tour job in the "uploading" state.
// @Tags        tours
// @Accept      json
// @Produce     json
// @Param       request body models.CreateTourRequest true "Tour data"
// @Success     200 {object} models.Tour
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/tours [post]
func (h *ToursHandler) CreateTour(c *gin.Context) {
	var req models.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid tour data",
			Message: err.Error(),
		})
		return
	}

	tour := h.store.CreateTour(req.Title, req.Status)
	c.JSON(http.StatusOK, tour)
}

// GetTour godoc
// @Summary     Get a tour
// @Tags        tours
// @Produce     json
// @Param       id path int true "Tour ID"
// @Success     200 {object} models.Tour
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/tours/{id} [get]
func (h *ToursHandler) GetTour(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}

	tour, err := h.store.GetTour(id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "tour not found"})
		return
	}
	c.JSON(http.StatusOK, tour)
}

// UpdateTour godoc
// @Summary     Update a tour
// @Description Applies a partial update to the tour record. Arbitrary field
// @Description passthrough; enum transitions are not validated here.
// @Tags        tours
// @Accept      json
// @Produce     json
// @Param       id path int true "Tour ID"
// @Param       request body models.TourUpdate true "Fields to update"
// @Success     200 {object} models.Tour
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/tours/{id} [patch]
func (h *ToursHandler) UpdateTour(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}

	var update models.TourUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid update data",
			Message: err.Error(),
		})
		return
	}

	tour, err := h.store.UpdateTour(id, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "tour not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update tour"})
		return
	}
	c.JSON(http.StatusOK, tour)
}

// tourID parses the :id path param, writing the error response itself when
// the param is not an integer.
func tourID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid tour id"})
		return 0, false
	}
	return id, true
}
