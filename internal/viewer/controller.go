package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"virtual-tour-backend/internal/client"
	"virtual-tour-backend/internal/models"
)

// ErrTourFailed is returned by Controller.Run when the watched tour ends in
// the failed state. The processing screen stays up showing the failure; the
// caller must not keep polling.
var ErrTourFailed = errors.New("viewer: tour processing failed")

// Machine is the mutable holder of the current State. All mutation goes
// through Dispatch, which applies the pure reducer under a lock.
type Machine struct {
	mu    sync.Mutex
	state State
}

func NewMachine() *Machine {
	return &Machine{state: NewState()}
}

func (m *Machine) Dispatch(ev Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Reduce(m.state, ev)
	return m.state
}

func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Polling holds the controller's intervals. Defaults mirror the web client:
// tour every 2s, rooms every 3s while processing, 1s pause before switching
// to the viewer (perceived-completion delay, not a correctness requirement).
type Polling struct {
	TourInterval time.Duration
	RoomInterval time.Duration
	ViewerDelay  time.Duration
}

func DefaultPolling() Polling {
	return Polling{
		TourInterval: 2 * time.Second,
		RoomInterval: 3 * time.Second,
		ViewerDelay:  1 * time.Second,
	}
}

// Controller watches one tour through the API and drives the Machine: it
// adopts each polled tour record, adopts rooms while processing, and on
// completion adopts the final room list and lands on the viewer section.
type Controller struct {
	machine *Machine
	api     *client.Client
	polling Polling
}

func NewController(machine *Machine, api *client.Client) *Controller {
	return NewControllerWithPolling(machine, api, DefaultPolling())
}

func NewControllerWithPolling(machine *Machine, api *client.Client, polling Polling) *Controller {
	return &Controller{machine: machine, api: api, polling: polling}
}

// Run polls until the tour reaches a terminal state or ctx ends. It blocks;
// callers run it in their own goroutine.
func (c *Controller) Run(ctx context.Context, tourID int) error {
	c.machine.Dispatch(GoToSection{Section: SectionProcessing})

	tourTicker := time.NewTicker(c.polling.TourInterval)
	defer tourTicker.Stop()
	roomTicker := time.NewTicker(c.polling.RoomInterval)
	defer roomTicker.Stop()

	if done, err := c.pollTour(ctx, tourID); done || err != nil {
		return err
	}

	for {
		select {
		case <-tourTicker.C:
			if done, err := c.pollTour(ctx, tourID); done || err != nil {
				return err
			}
		case <-roomTicker.C:
			c.pollRooms(tourID)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pollTour fetches and adopts the tour once, retrying transient fetch
// failures so a single dropped poll does not abort the watch. done means a
// terminal state was handled and polling must stop.
func (c *Controller) pollTour(ctx context.Context, tourID int) (done bool, err error) {
	var tour models.Tour
	err = c.api.RetryWithBackoff(func() error {
		var err error
		tour, err = c.api.GetTour(tourID)
		return err
	}, 3)
	if err != nil {
		return false, err
	}
	c.machine.Dispatch(TourAdopted{Tour: tour})

	switch tour.Status {
	case models.StatusCompleted:
		var rooms []models.Room
		err := c.api.RetryWithBackoff(func() error {
			var err error
			rooms, err = c.api.Rooms(tourID)
			return err
		}, 3)
		if err != nil {
			return false, err
		}
		c.machine.Dispatch(RoomsAdopted{Rooms: rooms})

		select {
		case <-time.After(c.polling.ViewerDelay):
		case <-ctx.Done():
			return true, ctx.Err()
		}
		c.machine.Dispatch(GoToSection{Section: SectionViewer})
		return true, nil

	case models.StatusFailed:
		return true, ErrTourFailed
	}
	return false, nil
}

// pollRooms refreshes the room list while the tour is processing. Errors are
// ignored; the next tour poll surfaces real trouble.
func (c *Controller) pollRooms(tourID int) {
	state := c.machine.Current()
	if state.Tour == nil || state.Tour.Status != models.StatusProcessing {
		return
	}
	if rooms, err := c.api.Rooms(tourID); err == nil {
		c.machine.Dispatch(RoomsAdopted{Rooms: rooms})
	}
}
