// Package service orchestrates the settlement engine: it validates input,
// resolves roles, and delegates transactional work to the storage layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moimlab/settleup/internal/models"
	"github.com/moimlab/settleup/internal/storage"
)

// ErrValidation marks input rejected before any storage I/O. Callers decide
// the user-facing message; match with errors.Is.
var ErrValidation = errors.New("invalid input")

// EventService manages event lifecycle.
type EventService struct {
	store storage.Store
}

// NewEventService creates a new EventService with the given storage backend.
func NewEventService(store storage.Store) *EventService {
	return &EventService{store: store}
}

// CreateEventInput carries the fields for a new event. Manager and Account
// seed the event's first settlement bucket.
type CreateEventInput struct {
	Title       string
	Date        string
	Time        string
	Location    string
	Description string
	Manager     string
	Account     string
}

// Create validates the input and persists the event together with its first
// bucket. Title, date and location are required after trimming.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	date := strings.TrimSpace(in.Date)
	location := strings.TrimSpace(in.Location)

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrValidation)
	}

	event := &models.Event{
		Title:       title,
		Date:        date,
		Time:        strings.TrimSpace(in.Time),
		Location:    location,
		Description: strings.TrimSpace(in.Description),
	}

	if err := s.store.CreateEvent(ctx, event, strings.TrimSpace(in.Manager), strings.TrimSpace(in.Account)); err != nil {
		slog.Error("CreateEvent failed", "error", err)
		return nil, err
	}

	slog.Info("Event created", "event_id", event.ID, "title", event.Title)
	return event, nil
}

// Get retrieves one event.
func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	return s.store.GetEvent(ctx, eventID)
}

// Delete removes an event and everything it owns.
func (s *EventService) Delete(ctx context.Context, eventID string) error {
	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		slog.Error("DeleteEvent failed", "event_id", eventID, "error", err)
		return err
	}
	slog.Info("Event deleted", "event_id", eventID)
	return nil
}

// List returns all events with aggregate counts.
func (s *EventService) List(ctx context.Context) ([]*models.EventSummary, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		slog.Error("ListEvents failed", "error", err)
		return nil, err
	}
	return events, nil
}
