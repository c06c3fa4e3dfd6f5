package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type UploadResponse struct {
	Photos  []Photo `json:"photos"`
	Message string  `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ProgressEvent is one message on a tour's event stream. The websocket
// channel carries the same information a poller would derive from the tour
// record, just pushed instead of pulled.
type ProgressEvent struct {
	TourID  int                    `json:"tourId"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
