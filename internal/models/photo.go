package models

import "time"

// Photo is one uploaded source image. RoomID stays nil until an assignment
// policy exists; Width and Height stay nil until the image is measured.
type Photo struct {
	ID           int       `json:"id"`
	TourID       int       `json:"tourId"`
	RoomID       *int      `json:"roomId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Width        *int      `json:"width"`
	Height       *int      `json:"height"`
	Processed    bool      `json:"processed"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

type PhotoUpdate struct {
	RoomID       *int    `json:"roomId,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	Width        *int    `json:"width,omitempty"`
	Height       *int    `json:"height,omitempty"`
	Processed    *bool   `json:"processed,omitempty"`
}
