// Package viewer holds the client-side state machine for the tour UI: which
// section is on screen, which tour is being watched, and which room the
// viewer is looking at. State is immutable and advanced by a reducer; all
// derived values are pure functions over State.
package viewer

import "virtual-tour-backend/internal/models"

// Section is the client's top-level screen. Exactly one is active.
type Section string

const (
	SectionHome       Section = "home"
	SectionUpload     Section = "upload"
	SectionBroadcast  Section = "broadcast"
	SectionProcessing Section = "processing"
	SectionViewer     Section = "viewer"
)

type State struct {
	Section   Section
	Tour      *models.Tour
	Rooms     []models.Room
	Photos    []models.Photo
	RoomIndex int

	// Upload state, tracked separately from the tour record.
	PendingFiles   []string
	Uploading      bool
	UploadProgress int
}

func NewState() State {
	return State{Section: SectionHome}
}

// Event is one state transition input. Reduce handles every concrete type
// below; unknown events leave the state unchanged.
type Event interface{ isEvent() }

type GoToSection struct{ Section Section }

type TourAdopted struct{ Tour models.Tour }

type TourCleared struct{}

type RoomsAdopted struct{ Rooms []models.Room }

type PhotosAdopted struct{ Photos []models.Photo }

type NextRoom struct{}

type PreviousRoom struct{}

type GoToRoom struct{ Index int }

type FilesQueued struct{ Names []string }

type FileRemoved struct{ Index int }

type FilesCleared struct{}

type UploadStarted struct{}

type UploadProgressed struct{ Percent int }

type UploadFinished struct{}

func (GoToSection) isEvent()      {}
func (TourAdopted) isEvent()      {}
func (TourCleared) isEvent()      {}
func (RoomsAdopted) isEvent()     {}
func (PhotosAdopted) isEvent()    {}
func (NextRoom) isEvent()         {}
func (PreviousRoom) isEvent()     {}
func (GoToRoom) isEvent()         {}
func (FilesQueued) isEvent()      {}
func (FileRemoved) isEvent()      {}
func (FilesCleared) isEvent()     {}
func (UploadStarted) isEvent()    {}
func (UploadProgressed) isEvent() {}
func (UploadFinished) isEvent()   {}

// Reduce returns the state after applying one event. Room navigation on an
// empty room list is a no-op, as is a GoToRoom with an out-of-range index.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case GoToSection:
		s.Section = ev.Section

	case TourAdopted:
		tour := ev.Tour
		s.Tour = &tour

	case TourCleared:
		s.Tour = nil
		s.Rooms = nil
		s.Photos = nil
		s.RoomIndex = 0

	case RoomsAdopted:
		s.Rooms = ev.Rooms
		if s.RoomIndex >= len(s.Rooms) {
			s.RoomIndex = 0
		}

	case PhotosAdopted:
		s.Photos = ev.Photos

	case NextRoom:
		if n := len(s.Rooms); n > 0 {
			s.RoomIndex = (s.RoomIndex + 1) % n
		}

	case PreviousRoom:
		if n := len(s.Rooms); n > 0 {
			if s.RoomIndex == 0 {
				s.RoomIndex = n - 1
			} else {
				s.RoomIndex--
			}
		}

	case GoToRoom:
		if ev.Index >= 0 && ev.Index < len(s.Rooms) {
			s.RoomIndex = ev.Index
		}

	case FilesQueued:
		s.PendingFiles = append(append([]string(nil), s.PendingFiles...), ev.Names...)

	case FileRemoved:
		if ev.Index >= 0 && ev.Index < len(s.PendingFiles) {
			files := make([]string, 0, len(s.PendingFiles)-1)
			files = append(files, s.PendingFiles[:ev.Index]...)
			files = append(files, s.PendingFiles[ev.Index+1:]...)
			s.PendingFiles = files
		}

	case FilesCleared:
		s.PendingFiles = nil

	case UploadStarted:
		s.Uploading = true
		s.UploadProgress = 0

	case UploadProgressed:
		s.UploadProgress = ev.Percent

	case UploadFinished:
		s.Uploading = false
		s.UploadProgress = 100
	}
	return s
}

// CurrentRoom returns the active room, if any.
func (s State) CurrentRoom() (models.Room, bool) {
	if len(s.Rooms) == 0 {
		return models.Room{}, false
	}
	return s.Rooms[s.RoomIndex], true
}
