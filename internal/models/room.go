package models

// Room is a detected sub-space of a tour. Rooms are created in bulk by the
// processing pipeline during the analysis stage and never deleted.
type Room struct {
	ID           int    `json:"id"`
	TourID       int    `json:"tourId"`
	Name         string `json:"name"`
	Type         string `json:"type"` // living_room, kitchen, bedroom, bathroom, ...
	Confidence   int    `json:"confidence"` // 0-100
	PhotoCount   int    `json:"photoCount"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type RoomUpdate struct {
	Name         *string `json:"name,omitempty"`
	Type         *string `json:"type,omitempty"`
	Confidence   *int    `json:"confidence,omitempty"`
	PhotoCount   *int    `json:"photoCount,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}
