package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/moimlab/settleup/internal/roles"
	"github.com/moimlab/settleup/internal/service"
	"github.com/moimlab/settleup/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	handler := New(
		service.NewEventService(store),
		service.NewBucketService(store),
		service.NewParticipantService(store, roles.NewResolver(roles.Presets{})),
	)

	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	server := setupTestServer(t)

	var event map[string]any
	resp := doJSON(t, http.MethodPost, server.URL+"/api/events", map[string]string{
		"title":    "Autumn Meetup",
		"date":     "2026-10-10",
		"location": "Pangyo",
		"manager":  "Kim",
		"account":  "110-1",
	}, &event)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create event status = %d, want 201", resp.StatusCode)
	}
	eventID, _ := event["id"].(string)
	if eventID == "" {
		t.Fatal("expected event id in response")
	}

	t.Run("validation maps to 400", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/events", map[string]string{
			"title": "No date or location",
		}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("bulk add returns inserted count", func(t *testing.T) {
		var out map[string]int
		resp := doJSON(t, http.MethodPost, server.URL+"/api/events/"+eventID+"/participants", map[string]any{
			"entries": []map[string]string{
				{"name": "Alice"},
				{"name": "alice"},
				{"name": "Bob"},
			},
		}, &out)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if out["inserted"] != 2 {
			t.Errorf("inserted = %d, want 2", out["inserted"])
		}
	})

	t.Run("last bucket delete maps to 409", func(t *testing.T) {
		var buckets []map[string]any
		doJSON(t, http.MethodGet, server.URL+"/api/events/"+eventID+"/buckets", nil, &buckets)
		if len(buckets) != 1 {
			t.Fatalf("bucket count = %d, want 1", len(buckets))
		}
		bucketID, _ := buckets[0]["id"].(string)

		resp := doJSON(t, http.MethodDelete,
			fmt.Sprintf("%s/api/events/%s/buckets/%s", server.URL, eventID, bucketID), nil, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("status = %d, want 409", resp.StatusCode)
		}
	})

	t.Run("unknown event maps to 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/events/nope", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("delete event", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, server.URL+"/api/events/"+eventID, nil, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want 204", resp.StatusCode)
		}
	})
}

func TestSettledToggleOverHTTP(t *testing.T) {
	server := setupTestServer(t)

	var event map[string]any
	doJSON(t, http.MethodPost, server.URL+"/api/events", map[string]string{
		"title":    "Meetup",
		"date":     "2026-10-10",
		"location": "Seoul",
	}, &event)
	eventID := event["id"].(string)

	doJSON(t, http.MethodPost, server.URL+"/api/events/"+eventID+"/participants", map[string]any{
		"entries": []map[string]string{{"name": "Bob"}},
	}, nil)

	var participants []map[string]any
	doJSON(t, http.MethodGet, server.URL+"/api/events/"+eventID+"/participants", nil, &participants)
	if len(participants) != 1 {
		t.Fatalf("participant count = %d, want 1", len(participants))
	}
	participantID := participants[0]["id"].(string)

	resp := doJSON(t, http.MethodPut,
		server.URL+"/api/events/"+eventID+"/participants/"+participantID+"/settled",
		map[string]any{"settled": true}, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	doJSON(t, http.MethodGet, server.URL+"/api/events/"+eventID+"/participants", nil, &participants)
	if settled, _ := participants[0]["settled"].(bool); !settled {
		t.Error("participant not settled after toggle")
	}
}
