package models

type CreateTourRequest struct {
	Title string `json:"title" binding:"required"`
	// Optional; new tours default to "uploading".
	Status TourStatus `json:"status,omitempty"`
}
