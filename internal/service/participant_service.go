package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/moimlab/settleup/internal/metrics"
	"github.com/moimlab/settleup/internal/models"
	"github.com/moimlab/settleup/internal/roles"
	"github.com/moimlab/settleup/internal/storage"
)

// maxBatchSize caps one bulk-add call to bound pathological input.
const maxBatchSize = 120

// ParticipantService handles bulk ingestion and settlement toggling.
type ParticipantService struct {
	store    storage.Store
	resolver *roles.Resolver
}

// NewParticipantService creates a ParticipantService. The resolver supplies
// roles for entries that carry none; pass roles.NewResolver with the loaded
// roster presets (or roles.DefaultPresets when no roster is configured).
func NewParticipantService(store storage.Store, resolver *roles.Resolver) *ParticipantService {
	return &ParticipantService{store: store, resolver: resolver}
}

// BulkAdd merges a batch of entries into the event, linking each participant
// into the target bucket (the primary bucket when targetBucketID is empty).
// Names are trimmed, empties dropped, and duplicates discarded
// case-insensitively before the batch is capped at maxBatchSize.
//
// The returned count is the number of bucket links actually created — not
// the number of names submitted, and not the number of participants created.
// Re-submitting an identical batch returns 0. The whole batch is atomic.
func (s *ParticipantService) BulkAdd(ctx context.Context, eventID string, entries []models.Entry, targetBucketID string) (int, error) {
	if eventID == "" {
		return 0, fmt.Errorf("%w: event id is required", ErrValidation)
	}

	normalized, err := s.normalize(entries)
	if err != nil {
		return 0, err
	}
	if len(normalized) == 0 {
		return 0, nil
	}

	metrics.IngestBatches.Inc()
	metrics.IngestEntries.Add(float64(len(normalized)))

	inserted, err := s.store.AddParticipants(ctx, eventID, normalized, targetBucketID)
	if err != nil {
		slog.Error("BulkAdd failed", "event_id", eventID, "entries", len(normalized), "error", err)
		return 0, err
	}
	metrics.LinksCreated.Add(float64(inserted))

	slog.Info("Participants ingested",
		"event_id", eventID,
		"entries", len(normalized),
		"links_created", inserted,
	)
	return inserted, nil
}

// normalize trims names, drops empties, rejects unknown explicit roles,
// deduplicates case-insensitively (first occurrence wins), resolves missing
// roles through the preset resolver, and caps the batch.
func (s *ParticipantService) normalize(entries []models.Entry) ([]models.Entry, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]models.Entry, 0, len(entries))

	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		if entry.Role != "" && !entry.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, entry.Role)
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		role := entry.Role
		if role == "" {
			role = s.resolver.Resolve(name)
		}

		out = append(out, models.Entry{Name: name, Role: role})
		if len(out) == maxBatchSize {
			break
		}
	}

	return out, nil
}

// SetSettled toggles the settled flag: on exactly one link when bucketID is
// given, or on every link of the participant within the event when it is
// empty.
func (s *ParticipantService) SetSettled(ctx context.Context, participantID, eventID, bucketID string, settled bool) error {
	if participantID == "" || eventID == "" {
		return fmt.Errorf("%w: participant id and event id are required", ErrValidation)
	}

	if err := s.store.SetSettled(ctx, eventID, participantID, bucketID, settled); err != nil {
		slog.Error("SetSettled failed",
			"event_id", eventID,
			"participant_id", participantID,
			"error", err,
		)
		return err
	}
	metrics.SettledToggles.WithLabelValues(strconv.FormatBool(settled)).Inc()

	slog.Info("Settled flag updated",
		"event_id", eventID,
		"participant_id", participantID,
		"bucket_id", bucketID,
		"settled", settled,
	)
	return nil
}

// RemoveFromBucket removes one participant from one bucket; a participant
// left without any links is swept in the same transaction.
func (s *ParticipantService) RemoveFromBucket(ctx context.Context, eventID, bucketID, participantID string) error {
	if err := s.store.RemoveFromBucket(ctx, eventID, bucketID, participantID); err != nil {
		slog.Error("RemoveFromBucket failed",
			"event_id", eventID,
			"bucket_id", bucketID,
			"participant_id", participantID,
			"error", err,
		)
		return err
	}
	slog.Info("Participant unlinked", "event_id", eventID, "bucket_id", bucketID, "participant_id", participantID)
	return nil
}

// List returns participants matching the filter, annotated with their
// effective settled state.
func (s *ParticipantService) List(ctx context.Context, filter storage.ParticipantFilter) ([]*models.ParticipantView, error) {
	if filter.EventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}

	participants, err := s.store.ListParticipants(ctx, filter)
	if err != nil {
		slog.Error("ListParticipants failed", "event_id", filter.EventID, "error", err)
		return nil, err
	}
	return participants, nil
}
