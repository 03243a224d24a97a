package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moimlab/settleup/internal/models"
	"github.com/moimlab/settleup/internal/storage"
)

// BucketService manages settlement buckets for events.
type BucketService struct {
	store storage.Store
}

// NewBucketService creates a new BucketService with the given storage backend.
func NewBucketService(store storage.Store) *BucketService {
	return &BucketService{store: store}
}

// Create appends a new bucket to the event.
func (s *BucketService) Create(ctx context.Context, eventID, title, manager, account string) (*models.SettlementBucket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: bucket title is required", ErrValidation)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}

	bucket := &models.SettlementBucket{
		EventID: eventID,
		Title:   title,
		Manager: strings.TrimSpace(manager),
		Account: strings.TrimSpace(account),
	}

	if err := s.store.CreateBucket(ctx, bucket); err != nil {
		slog.Error("CreateBucket failed", "event_id", eventID, "error", err)
		return nil, err
	}

	slog.Info("Bucket created",
		"event_id", eventID,
		"bucket_id", bucket.ID,
		"sort_order", bucket.SortOrder,
	)
	return bucket, nil
}

// Update changes a bucket's title/manager/account. A (bucketID, eventID)
// mismatch is a silent no-op.
func (s *BucketService) Update(ctx context.Context, bucketID, eventID, title, manager, account string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: bucket title is required", ErrValidation)
	}

	bucket := &models.SettlementBucket{
		ID:      bucketID,
		EventID: eventID,
		Title:   title,
		Manager: strings.TrimSpace(manager),
		Account: strings.TrimSpace(account),
	}

	if err := s.store.UpdateBucket(ctx, bucket); err != nil {
		slog.Error("UpdateBucket failed", "bucket_id", bucketID, "error", err)
		return err
	}

	slog.Info("Bucket updated", "event_id", eventID, "bucket_id", bucketID)
	return nil
}

// Delete removes a bucket and returns the event's new primary bucket ID so
// the caller can redirect context there. Deleting the last bucket fails with
// storage.ErrLastBucket.
func (s *BucketService) Delete(ctx context.Context, bucketID, eventID string) (string, error) {
	primaryID, err := s.store.DeleteBucket(ctx, bucketID, eventID)
	if err != nil {
		slog.Error("DeleteBucket failed", "bucket_id", bucketID, "event_id", eventID, "error", err)
		return "", err
	}

	slog.Info("Bucket deleted",
		"event_id", eventID,
		"bucket_id", bucketID,
		"new_primary_id", primaryID,
	)
	return primaryID, nil
}

// List returns the event's buckets with participant and settled counts.
func (s *BucketService) List(ctx context.Context, eventID string) ([]*models.BucketSummary, error) {
	buckets, err := s.store.ListBuckets(ctx, eventID)
	if err != nil {
		slog.Error("ListBuckets failed", "event_id", eventID, "error", err)
		return nil, err
	}
	return buckets, nil
}
