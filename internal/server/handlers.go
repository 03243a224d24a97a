package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moimlab/settleup/internal/models"
	"github.com/moimlab/settleup/internal/service"
	"github.com/moimlab/settleup/internal/storage"
)

type eventResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Date           string `json:"date"`
	Time           string `json:"time,omitempty"`
	Location       string `json:"location"`
	Description    string `json:"description,omitempty"`
	DisplayManager string `json:"display_manager,omitempty"`
	DisplayAccount string `json:"display_account,omitempty"`
	CreatedAt      int64  `json:"created_at"`

	ParticipantCount *int `json:"participant_count,omitempty"`
	BucketCount      *int `json:"bucket_count,omitempty"`
}

func toEventResponse(e *models.Event) eventResponse {
	return eventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Date:           e.Date,
		Time:           e.Time,
		Location:       e.Location,
		Description:    e.Description,
		DisplayManager: e.DisplayManager,
		DisplayAccount: e.DisplayAccount,
		CreatedAt:      e.CreatedAt,
	}
}

type bucketResponse struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	Manager   string `json:"manager,omitempty"`
	Account   string `json:"account,omitempty"`
	SortOrder int    `json:"sort_order"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	ParticipantCount *int `json:"participant_count,omitempty"`
	SettledCount     *int `json:"settled_count,omitempty"`
}

func toBucketResponse(b *models.SettlementBucket) bucketResponse {
	return bucketResponse{
		ID:        b.ID,
		EventID:   b.EventID,
		Title:     b.Title,
		Manager:   b.Manager,
		Account:   b.Account,
		SortOrder: b.SortOrder,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type participantResponse struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Settled   bool   `json:"settled"`
	SettledAt int64  `json:"settled_at,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type createEventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Manager     string `json:"manager"`
	Account     string `json:"account"`
}

func (r *Router) handleCreateEvent(w http.ResponseWriter, req *http.Request) {
	var in createEventRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	event, err := r.events.Create(req.Context(), service.CreateEventInput{
		Title:       in.Title,
		Date:        in.Date,
		Time:        in.Time,
		Location:    in.Location,
		Description: in.Description,
		Manager:     in.Manager,
		Account:     in.Account,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (r *Router) handleListEvents(w http.ResponseWriter, req *http.Request) {
	events, err := r.events.List(req.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]eventResponse, len(events))
	for i, e := range events {
		resp := toEventResponse(&e.Event)
		pc, bc := e.ParticipantCount, e.BucketCount
		resp.ParticipantCount = &pc
		resp.BucketCount = &bc
		out[i] = resp
	}
	writeJSON(w, http.StatusOK, out)
}

func (r *Router) handleGetEvent(w http.ResponseWriter, req *http.Request) {
	event, err := r.events.Get(req.Context(), chi.URLParam(req, "eventID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (r *Router) handleDeleteEvent(w http.ResponseWriter, req *http.Request) {
	if err := r.events.Delete(req.Context(), chi.URLParam(req, "eventID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bucketRequest struct {
	Title   string `json:"title"`
	Manager string `json:"manager"`
	Account string `json:"account"`
}

func (r *Router) handleCreateBucket(w http.ResponseWriter, req *http.Request) {
	var in bucketRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	bucket, err := r.buckets.Create(req.Context(), chi.URLParam(req, "eventID"), in.Title, in.Manager, in.Account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBucketResponse(bucket))
}

func (r *Router) handleUpdateBucket(w http.ResponseWriter, req *http.Request) {
	var in bucketRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	err := r.buckets.Update(req.Context(),
		chi.URLParam(req, "bucketID"), chi.URLParam(req, "eventID"),
		in.Title, in.Manager, in.Account,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleDeleteBucket(w http.ResponseWriter, req *http.Request) {
	primaryID, err := r.buckets.Delete(req.Context(), chi.URLParam(req, "bucketID"), chi.URLParam(req, "eventID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"primary_bucket_id": primaryID})
}

func (r *Router) handleListBuckets(w http.ResponseWriter, req *http.Request) {
	buckets, err := r.buckets.List(req.Context(), chi.URLParam(req, "eventID"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]bucketResponse, len(buckets))
	for i, b := range buckets {
		resp := toBucketResponse(&b.SettlementBucket)
		pc, sc := b.ParticipantCount, b.SettledCount
		resp.ParticipantCount = &pc
		resp.SettledCount = &sc
		out[i] = resp
	}
	writeJSON(w, http.StatusOK, out)
}

type bulkAddRequest struct {
	Entries []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"entries"`
	BucketID string `json:"bucket_id"`
}

func (r *Router) handleBulkAdd(w http.ResponseWriter, req *http.Request) {
	var in bulkAddRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	entries := make([]models.Entry, len(in.Entries))
	for i, e := range in.Entries {
		entries[i] = models.Entry{Name: e.Name, Role: models.Role(e.Role)}
	}

	inserted, err := r.participants.BulkAdd(req.Context(), chi.URLParam(req, "eventID"), entries, in.BucketID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}

func (r *Router) handleListParticipants(w http.ResponseWriter, req *http.Request) {
	filter := storage.ParticipantFilter{
		EventID:      chi.URLParam(req, "eventID"),
		BucketID:     req.URL.Query().Get("bucket_id"),
		NameContains: req.URL.Query().Get("q"),
	}

	participants, err := r.participants.List(req.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]participantResponse, len(participants))
	for i, p := range participants {
		out[i] = participantResponse{
			ID:        p.ID,
			EventID:   p.EventID,
			Name:      p.Name,
			Role:      string(p.Role),
			Settled:   p.Settled,
			SettledAt: p.SettledAt,
			CreatedAt: p.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type setSettledRequest struct {
	BucketID string `json:"bucket_id"`
	Settled  bool   `json:"settled"`
}

func (r *Router) handleSetSettled(w http.ResponseWriter, req *http.Request) {
	var in setSettledRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	err := r.participants.SetSettled(req.Context(),
		chi.URLParam(req, "participantID"), chi.URLParam(req, "eventID"),
		in.BucketID, in.Settled,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleRemoveFromBucket(w http.ResponseWriter, req *http.Request) {
	err := r.participants.RemoveFromBucket(req.Context(),
		chi.URLParam(req, "eventID"),
		chi.URLParam(req, "bucketID"),
		chi.URLParam(req, "participantID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
