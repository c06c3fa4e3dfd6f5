package events

import (
	"sync"

	"virtual-tour-backend/internal/models"
)

// Hub fans tour progress events out to in-process subscribers. The pipeline
// and the upload handler publish; websocket sessions subscribe. Delivery is
// best-effort: a subscriber that stops draining its channel is dropped rather
// than allowed to block a publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[int]map[chan models.ProgressEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]map[chan models.ProgressEvent]struct{})}
}

// Subscribe registers for a tour's events. The returned cancel function must
// be called when done; it closes the channel.
func (h *Hub) Subscribe(tourID int) (<-chan models.ProgressEvent, func()) {
	ch := make(chan models.ProgressEvent, 16)

	h.mu.Lock()
	if h.subs[tourID] == nil {
		h.subs[tourID] = make(map[chan models.ProgressEvent]struct{})
	}
	h.subs[tourID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[tourID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, tourID)
			}
		}
	}
	return ch, cancel
}

func (h *Hub) Publish(tourID int, event string, payload map[string]interface{}) {
	msg := models.ProgressEvent{TourID: tourID, Event: event, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[tourID] {
		select {
		case ch <- msg:
		default:
			// Slow consumer; drop it so the pipeline never stalls.
			delete(h.subs[tourID], ch)
			close(ch)
		}
	}
}

// Event payloads

func UploadCompletedPayload(tourID, fileCount int) map[string]interface{} {
	return map[string]interface{}{
		"tour_id":    tourID,
		"status":     string(models.StatusProcessing),
		"file_count": fileCount,
	}
}

func StageAdvancedPayload(tourID int, step models.ProcessingStep, processed, total int) map[string]interface{} {
	return map[string]interface{}{
		"tour_id":          tourID,
		"status":           string(models.StatusProcessing),
		"processing_step":  string(step),
		"processed_photos": processed,
		"total_photos":     total,
	}
}

func ProcessingCompletedPayload(tourID, roomCount int) map[string]interface{} {
	return map[string]interface{}{
		"tour_id":    tourID,
		"status":     string(models.StatusCompleted),
		"room_count": roomCount,
	}
}

func ProcessingFailedPayload(tourID int, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"tour_id": tourID,
		"status":  string(models.StatusFailed),
		"error":   errorMsg,
	}
}
