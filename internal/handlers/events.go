package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"virtual-tour-backend/internal/events"
	"virtual-tour-backend/internal/models"
	"virtual-tour-backend/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same-process client; tighten for real deployments
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type EventsHandler struct {
	store store.Store
	hub   *events.Hub
}

func NewEventsHandler(s store.Store, hub *events.Hub) *EventsHandler {
	return &EventsHandler{store: s, hub: hub}
}

// Stream godoc
// @Summary     Stream tour progress events
// @Description Upgrades to a websocket and pushes upload and pipeline
// @Description progress events for the tour. Push alternative to polling
// @Description GET /api/tours/{id}; the payloads carry the same fields.
// @Tags        events
// @Param       id path int true "Tour ID"
// @Success     101 {string} string "switching protocols"
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/tours/{id}/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	id, ok := tourID(c)
	if !ok {
		return
	}

	if _, err := h.store.GetTour(id); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "tour not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Printf("events: tour %d websocket upgrade failed: %v", id, err)
		return
	}
	defer conn.Close()

	ch, cancel := h.hub.Subscribe(id)
	defer cancel()

	// Drain the reader so close frames are processed; we never expect
	// client messages.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-clientGone:
			return
		}
	}
}
