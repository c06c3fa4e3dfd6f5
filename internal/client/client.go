// Package client is the Go client for the tour API. The viewer controller
// drives its polling loop through it; it is also usable standalone.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"virtual-tour-backend/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// File is one local photo queued for upload.
type File struct {
	Name string
	Data []byte
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateTour(title string) (models.Tour, error) {
	body, err := json.Marshal(models.CreateTourRequest{Title: title})
	if err != nil {
		return models.Tour{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/api/tours", bytes.NewBuffer(body))
	if err != nil {
		return models.Tour{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var tour models.Tour
	if err := c.do(req, &tour); err != nil {
		return models.Tour{}, err
	}
	return tour, nil
}

func (c *Client) GetTour(id int) (models.Tour, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/api/tours/%d", c.baseURL, id), nil)
	if err != nil {
		return models.Tour{}, fmt.Errorf("failed to create request: %w", err)
	}

	var tour models.Tour
	if err := c.do(req, &tour); err != nil {
		return models.Tour{}, err
	}
	return tour, nil
}

func (c *Client) UpdateTour(id int, update models.TourUpdate) (models.Tour, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return models.Tour{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("PATCH", fmt.Sprintf("%s/api/tours/%d", c.baseURL, id), bytes.NewBuffer(body))
	if err != nil {
		return models.Tour{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var tour models.Tour
	if err := c.do(req, &tour); err != nil {
		return models.Tour{}, err
	}
	return tour, nil
}

// UploadPhotos sends the files as one multipart request on the "photos"
// field and returns the created photo records.
func (c *Client) UploadPhotos(tourID int, files []File) ([]models.Photo, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := writer.CreateFormFile("photos", file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart form: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("failed to build multipart form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/api/tours/%d/photos", c.baseURL, tourID), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp models.UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Photos, nil
}

func (c *Client) Photos(tourID int) ([]models.Photo, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/api/tours/%d/photos", c.baseURL, tourID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var photos []models.Photo
	if err := c.do(req, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (c *Client) Rooms(tourID int) ([]models.Room, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/api/tours/%d/rooms", c.baseURL, tourID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var rooms []models.Room
	if err := c.do(req, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// PollTour fetches the tour at the given interval until its status goes
// terminal (completed or failed) or the context ends. Transient fetch
// failures are retried with backoff before the poll gives up. The polling
// contract: a failed tour is terminal immediately, never polled further.
func (c *Client) PollTour(ctx context.Context, id int, interval time.Duration) (models.Tour, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var tour models.Tour
		err := c.RetryWithBackoff(func() error {
			var err error
			tour, err = c.GetTour(id)
			return err
		}, 3)
		if err != nil {
			return models.Tour{}, err
		}
		if tour.Status == models.StatusCompleted || tour.Status == models.StatusFailed {
			return tour, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return tour, ctx.Err()
		}
	}
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d, body: %s", req.Method, req.URL.Path, resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return nil
}
