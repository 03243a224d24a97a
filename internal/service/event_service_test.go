package service

import (
	"context"
	"errors"
	"testing"

	"github.com/moimlab/settleup/internal/models"
	"github.com/moimlab/settleup/internal/roles"
	"github.com/moimlab/settleup/internal/storage"
)

func TestCreateEventValidation(t *testing.T) {
	events, _, _ := newTestServices(t, roles.Presets{})
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateEventInput
	}{
		{name: "empty title", in: CreateEventInput{Title: "  ", Date: "2026-07-04", Location: "Hongdae"}},
		{name: "empty date", in: CreateEventInput{Title: "Meetup", Date: "", Location: "Hongdae"}},
		{name: "malformed date", in: CreateEventInput{Title: "Meetup", Date: "July 4th", Location: "Hongdae"}},
		{name: "empty location", in: CreateEventInput{Title: "Meetup", Date: "2026-07-04", Location: " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := events.Create(ctx, tt.in); !errors.Is(err, ErrValidation) {
				t.Errorf("Create = %v, want ErrValidation", err)
			}
		})
	}
}

func TestEventMirrorRoundTrip(t *testing.T) {
	events, buckets, _ := newTestServices(t, roles.Presets{})
	ctx := context.Background()

	event := createEvent(t, events)
	if event.DisplayManager != "Kim" || event.DisplayAccount != "110-1" {
		t.Fatalf("new event display = (%q, %q), want supplied (Kim, 110-1)",
			event.DisplayManager, event.DisplayAccount)
	}

	list, err := buckets.List(ctx, event.ID)
	if err != nil {
		t.Fatalf("List buckets failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("bucket count = %d, want 1", len(list))
	}
	primary := list[0]
	if primary.Manager != "Kim" || primary.Account != "110-1" {
		t.Fatalf("first bucket = (%q, %q), want event's (Kim, 110-1)", primary.Manager, primary.Account)
	}

	b2, err := buckets.Create(ctx, event.ID, "2차 정산", "Lee", "220-2")
	if err != nil {
		t.Fatalf("Create bucket failed: %v", err)
	}

	t.Run("non-primary update leaves event alone", func(t *testing.T) {
		if err := buckets.Update(ctx, b2.ID, event.ID, "2차 정산", "Lee", "999-9"); err != nil {
			t.Fatalf("Update bucket failed: %v", err)
		}
		got, err := events.Get(ctx, event.ID)
		if err != nil {
			t.Fatalf("Get event failed: %v", err)
		}
		if got.DisplayManager != "Kim" || got.DisplayAccount != "110-1" {
			t.Errorf("display = (%q, %q), want unchanged (Kim, 110-1)", got.DisplayManager, got.DisplayAccount)
		}
	})

	t.Run("primary update re-mirrors", func(t *testing.T) {
		if err := buckets.Update(ctx, primary.ID, event.ID, "1차 정산", "Park", "330-3"); err != nil {
			t.Fatalf("Update bucket failed: %v", err)
		}
		got, err := events.Get(ctx, event.ID)
		if err != nil {
			t.Fatalf("Get event failed: %v", err)
		}
		if got.DisplayManager != "Park" || got.DisplayAccount != "330-3" {
			t.Errorf("display = (%q, %q), want (Park, 330-3)", got.DisplayManager, got.DisplayAccount)
		}
	})
}

func TestDeleteLastBucketRejected(t *testing.T) {
	events, buckets, _ := newTestServices(t, roles.Presets{})
	ctx := context.Background()
	event := createEvent(t, events)

	b2, err := buckets.Create(ctx, event.ID, "2차 정산", "", "")
	if err != nil {
		t.Fatalf("Create bucket failed: %v", err)
	}

	list, err := buckets.List(ctx, event.ID)
	if err != nil {
		t.Fatalf("List buckets failed: %v", err)
	}
	newPrimary, err := buckets.Delete(ctx, list[0].ID, event.ID)
	if err != nil {
		t.Fatalf("Delete bucket failed: %v", err)
	}
	if newPrimary != b2.ID {
		t.Errorf("new primary = %s, want %s", newPrimary, b2.ID)
	}

	// B2 is now the only bucket left; deleting it must always fail.
	if _, err := buckets.Delete(ctx, b2.ID, event.ID); !errors.Is(err, storage.ErrLastBucket) {
		t.Errorf("Delete = %v, want ErrLastBucket", err)
	}

	list, err = buckets.List(ctx, event.ID)
	if err != nil {
		t.Fatalf("List buckets failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("bucket count = %d, want 1", len(list))
	}
}

func TestListEventsCounts(t *testing.T) {
	events, buckets, participants := newTestServices(t, roles.Presets{})
	ctx := context.Background()
	event := createEvent(t, events)

	if _, err := buckets.Create(ctx, event.ID, "2차 정산", "", ""); err != nil {
		t.Fatalf("Create bucket failed: %v", err)
	}
	batch := []models.Entry{{Name: "Alice"}, {Name: "Bob"}, {Name: "Carol"}}
	if _, err := participants.BulkAdd(ctx, event.ID, batch, ""); err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}

	summaries, err := events.List(ctx)
	if err != nil {
		t.Fatalf("List events failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("event count = %d, want 1", len(summaries))
	}
	if summaries[0].ParticipantCount != 3 {
		t.Errorf("participant count = %d, want 3", summaries[0].ParticipantCount)
	}
	if summaries[0].BucketCount != 2 {
		t.Errorf("bucket count = %d, want 2", summaries[0].BucketCount)
	}
	if summaries[0].DisplayManager != "Kim" {
		t.Errorf("display manager = %q, want Kim", summaries[0].DisplayManager)
	}
}
