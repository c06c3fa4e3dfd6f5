package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"virtual-tour-backend/internal/models"
)

// ErrNotFound is returned by update and lookup operations when no record
// exists for the given id.
var ErrNotFound = errors.New("store: not found")

// Store is process-lifetime keyed storage for tours, rooms and photos. It
// performs no enum-transition validation; that is the pipeline's job.
type Store interface {
	CreateTour(title string, status models.TourStatus) models.Tour
	GetTour(id int) (models.Tour, error)
	UpdateTour(id int, update models.TourUpdate) (models.Tour, error)

	CreateRoom(room models.Room) models.Room
	RoomsByTour(tourID int) []models.Room
	UpdateRoom(id int, update models.RoomUpdate) (models.Room, error)

	CreatePhoto(photo models.Photo) models.Photo
	PhotosByTour(tourID int) []models.Photo
	PhotosByRoom(roomID int) []models.Photo
	UpdatePhoto(id int, update models.PhotoUpdate) (models.Photo, error)
}

// MemStore keeps every record in process memory. Ids are per-kind monotonic
// counters starting at 1 and are never reused. All access goes through a
// single RWMutex; each mutation is one atomic replace-by-id.
type MemStore struct {
	mu      sync.RWMutex
	tours   map[int]models.Tour
	rooms   map[int]models.Room
	photos  map[int]models.Photo
	tourID  int
	roomID  int
	photoID int
}

func NewMemStore() *MemStore {
	return &MemStore{
		tours:  make(map[int]models.Tour),
		rooms:  make(map[int]models.Room),
		photos: make(map[int]models.Photo),
	}
}

func (s *MemStore) CreateTour(title string, status models.TourStatus) models.Tour {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status == "" {
		status = models.StatusUploading
	}

	s.tourID++
	tour := models.Tour{
		ID:             s.tourID,
		Title:          title,
		Status:         status,
		ProcessingStep: models.StepUpload,
		CreatedAt:      time.Now().UTC(),
		CompletedAt:    nil,
	}
	s.tours[tour.ID] = tour
	return tour
}

func (s *MemStore) GetTour(id int) (models.Tour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tour, ok := s.tours[id]
	if !ok {
		return models.Tour{}, ErrNotFound
	}
	return tour, nil
}

func (s *MemStore) UpdateTour(id int, update models.TourUpdate) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tour, ok := s.tours[id]
	if !ok {
		return models.Tour{}, ErrNotFound
	}

	if update.Title != nil {
		tour.Title = *update.Title
	}
	if update.Status != nil {
		tour.Status = *update.Status
	}
	if update.TotalPhotos != nil {
		tour.TotalPhotos = *update.TotalPhotos
	}
	if update.ProcessedPhotos != nil {
		tour.ProcessedPhotos = *update.ProcessedPhotos
	}
	if update.ProcessingStep != nil {
		tour.ProcessingStep = *update.ProcessingStep
	}
	if update.CompletedAt != nil {
		tour.CompletedAt = update.CompletedAt
	}

	s.tours[id] = tour
	return tour, nil
}

// TourCount reports how many tours exist. MemStore-only; useful for tests
// asserting that failed updates leave the collection untouched.
func (s *MemStore) TourCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tours)
}

func (s *MemStore) CreateRoom(room models.Room) models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roomID++
	room.ID = s.roomID
	s.rooms[room.ID] = room
	return room
}

// RoomsByTour returns the tour's rooms in insertion order. A linear scan is
// fine at this scale; monotonic ids make insertion order the same as id order.
func (s *MemStore) RoomsByTour(tourID int) []models.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]models.Room, 0)
	for _, room := range s.rooms {
		if room.TourID == tourID {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

func (s *MemStore) UpdateRoom(id int, update models.RoomUpdate) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return models.Room{}, ErrNotFound
	}

	if update.Name != nil {
		room.Name = *update.Name
	}
	if update.Type != nil {
		room.Type = *update.Type
	}
	if update.Confidence != nil {
		room.Confidence = *update.Confidence
	}
	if update.PhotoCount != nil {
		room.PhotoCount = *update.PhotoCount
	}
	if update.ThumbnailURL != nil {
		room.ThumbnailURL = *update.ThumbnailURL
	}

	s.rooms[id] = room
	return room, nil
}

func (s *MemStore) CreatePhoto(photo models.Photo) models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.photoID++
	photo.ID = s.photoID
	photo.UploadedAt = time.Now().UTC()
	s.photos[photo.ID] = photo
	return photo
}

func (s *MemStore) PhotosByTour(tourID int) []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	photos := make([]models.Photo, 0)
	for _, photo := range s.photos {
		if photo.TourID == tourID {
			photos = append(photos, photo)
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos
}

func (s *MemStore) PhotosByRoom(roomID int) []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	photos := make([]models.Photo, 0)
	for _, photo := range s.photos {
		if photo.RoomID != nil && *photo.RoomID == roomID {
			photos = append(photos, photo)
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos
}

func (s *MemStore) UpdatePhoto(id int, update models.PhotoUpdate) (models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, ok := s.photos[id]
	if !ok {
		return models.Photo{}, ErrNotFound
	}

	if update.RoomID != nil {
		photo.RoomID = update.RoomID
	}
	if update.ThumbnailURL != nil {
		photo.ThumbnailURL = *update.ThumbnailURL
	}
	if update.Width != nil {
		photo.Width = update.Width
	}
	if update.Height != nil {
		photo.Height = update.Height
	}
	if update.Processed != nil {
		photo.Processed = *update.Processed
	}

	s.photos[id] = photo
	return photo, nil
}
