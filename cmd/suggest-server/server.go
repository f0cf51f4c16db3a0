package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

const maxRequestBody = 64 << 10

type jobService interface {
	Submit(ctx context.Context, keywords []string, limit int) (string, error)
	Status(ctx context.Context, id string) (jobs.Job, error)
}

type server struct {
	svc    jobService
	labels []string
}

func newRouter(s *server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/suggest", s.handleSuggest).Methods(http.MethodPost)
	r.HandleFunc("/status/{id}", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/labels", s.handleLabels).Methods(http.MethodGet)
	return r
}

// keywords accepts either a JSON list or one space-separated string
type keywords []string

func (k *keywords) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = strings.Fields(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*k = list
	return nil
}

type suggestRequest struct {
	Keywords keywords `json:"keywords"`
	Limit    int      `json:"limit"`
}

type suggestResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type statusResponse struct {
	ID      string         `json:"id"`
	State   jobs.State     `json:"state"`
	Current int            `json:"current"`
	Total   int            `json:"total"`
	Status  string         `json:"status,omitempty"`
	Result  []sample.Entry `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (s *server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, suggestResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	id, err := s.svc.Submit(r.Context(), req.Keywords, req.Limit)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, suggestResponse{ID: id})
	case errors.Is(err, internalerr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, suggestResponse{ID: id, Error: err.Error()})
	case errors.Is(err, internalerr.ErrPrecondition):
		writeJSON(w, http.StatusServiceUnavailable, suggestResponse{ID: id, Error: err.Error()})
	default:
		slog.Error("server: submit failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, suggestResponse{ID: id, Error: err.Error()})
	}
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, err := s.svc.Status(r.Context(), id)
	if errors.Is(err, internalerr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, suggestResponse{Error: "unknown job " + id})
		return
	}
	if err != nil {
		slog.Error("server: status failed", "job", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, suggestResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:      job.ID,
		State:   job.State,
		Current: job.Progress.Current,
		Total:   job.Progress.Total,
		Status:  job.Progress.Status,
		Result:  job.Result,
		Error:   job.Error,
	})
}

func (s *server) handleLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"labels": s.labels})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server: write response", "err", err)
	}
}
