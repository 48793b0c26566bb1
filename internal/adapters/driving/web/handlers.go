package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// snapshotView is the JSON form of a snapshot.
type snapshotView struct {
	Headline    string     `json:"headline"`
	Fetching    bool       `json:"fetching"`
	UpdateToday bool       `json:"updateToday"`
	Recents     []itemView `json:"recents"`
}

// itemView is the JSON form of a recorded item.
type itemView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
}

// cycleView is the JSON form of a cycle result.
type cycleView struct {
	Date        string     `json:"date"`
	Headline    string     `json:"headline"`
	UpdateToday bool       `json:"updateToday"`
	Written     bool       `json:"written"`
	NewItems    []itemView `json:"newItems"`
	Recents     []itemView `json:"recents"`
}

func toItemViews(items []domain.RecentItem) []itemView {
	out := make([]itemView, len(items))
	for i, item := range items {
		out[i] = itemView{
			ID:          item.ID,
			Name:        item.Name,
			DisplayName: item.DisplayName(),
			URL:         item.URL,
		}
	}
	return out
}

func toSnapshotView(snap domain.Snapshot) snapshotView {
	return snapshotView{
		Headline:    snap.Headline(),
		Fetching:    snap.Fetching,
		UpdateToday: snap.UpdateToday,
		Recents:     toItemViews(snap.Recents),
	}
}

func displayName(item domain.RecentItem) string {
	return item.DisplayName()
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	snap := s.ports.Snapshot.Snapshot()
	if err := s.index.Execute(w, struct {
		Headline string
		Snapshot domain.Snapshot
	}{snap.Headline(), snap}); err != nil {
		log.Printf("web: rendering index: %v", err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSnapshotView(s.ports.Snapshot.Snapshot()))
}

func (s *Server) handleRecents(w http.ResponseWriter, r *http.Request) {
	recents, err := s.ports.History.Recents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemViews(recents))
}

// handleHistory writes the stored document in its persisted form.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.ports.History.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := history.Encode()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := domain.ParseBatchDate(date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYYMMDD"})
		return
	}

	history, err := s.ports.History.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	for _, batch := range history.Batches {
		if batch.Date == date {
			writeJSON(w, http.StatusOK, map[string]any{
				"date":  batch.Date,
				"items": toItemViews(batch.Items),
			})
			return
		}
	}
	writeError(w, domain.ErrNotFound)
}

func (s *Server) handleUpdatedToday(w http.ResponseWriter, r *http.Request) {
	updated, err := s.ports.History.UpdatedToday(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"updateToday": updated,
		"headline":    domain.Snapshot{UpdateToday: updated}.Headline(),
	})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	result, err := s.ports.Reconciler.Reconcile(r.Context(), s.ports.Observer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cycleView{
		Date:        result.Date,
		Headline:    domain.Snapshot{UpdateToday: result.UpdateToday}.Headline(),
		UpdateToday: result.UpdateToday,
		Written:     result.Written,
		NewItems:    toItemViews(result.NewItems),
		Recents:     toItemViews(result.Recents),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCycleInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSourceFetch), errors.Is(err, domain.ErrStoreRead),
		errors.Is(err, domain.ErrStoreWrite):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		log.Printf("web: request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
