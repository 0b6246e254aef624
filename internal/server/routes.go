package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45"
	"github.com/sky-flux/fsrs45/internal/store"
)

// maxImportBytes bounds the size of an import request body.
const maxImportBytes = 64 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"model":   fsrs45.ModelVersion,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context(), s.clock())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// cardResponse is a card plus its retrievability at request time.
type cardResponse struct {
	store.Card
	Retrievability float64 `json:"retrievability"`
}

func (s *Server) cardResponse(c *store.Card) cardResponse {
	return cardResponse{
		Card:           *c,
		Retrievability: fsrs45.CurrentRetrievability(c.State, s.clock()),
	}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.ListFilter

	if v := q.Get("status"); v != "" {
		status, err := fsrs45.ParseStatus(v)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		f.Status = status
	}
	if v := q.Get("due_before"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(w, "due_before must be Unix milliseconds")
			return
		}
		f.DueBefore = time.UnixMilli(ms)
	}
	if q.Get("due") == "true" {
		f.DueBefore = s.clock().Add(time.Millisecond)
	}
	switch v := q.Get("order"); v {
	case "", "id", "due":
		f.OrderBy = v
	default:
		badRequest(w, fmt.Sprintf("unknown order %q", v))
		return
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	cards, err := s.store.ListCards(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]cardResponse, 0, len(cards))
	for i := range cards {
		out = append(out, s.cardResponse(&cards[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var nc store.NewCard
	if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	c, err := s.store.AddCard(r.Context(), nc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.cardResponse(c))
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cardResponse(c))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCard(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.ReviewLogs(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []fsrs45.ReviewLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

type reviewRequest struct {
	Grade      fsrs45.Grade `json:"grade"`
	DurationMS *int64       `json:"duration_ms,omitempty"`
	ReviewedAt *int64       `json:"reviewed_at,omitempty"` // Unix milliseconds, defaults to now.
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, fsrs45.ErrInvalidGrade) {
			s.writeError(w, r, err)
			return
		}
		badRequest(w, "invalid JSON body")
		return
	}
	if !req.Grade.IsValid() {
		badRequest(w, "grade is required")
		return
	}

	now := s.clock()
	if req.ReviewedAt != nil {
		now = time.UnixMilli(*req.ReviewedAt)
	}
	var duration *time.Duration
	if req.DurationMS != nil {
		if *req.DurationMS < 0 {
			badRequest(w, "duration_ms must not be negative")
			return
		}
		d := time.Duration(*req.DurationMS) * time.Millisecond
		duration = &d
	}

	c, err := s.store.Review(r.Context(), chi.URLParam(r, "cardID"), req.Grade, now, duration)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cardResponse(c))
}

// previewOption is the outcome of one grade.
type previewOption struct {
	State        fsrs45.ReviewState `json:"state"`
	IntervalDays float64            `json:"interval_days"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := s.clock()
	out := make(map[string]previewOption, len(fsrs45.Grades))
	for g, st := range fsrs45.Preview(c.State, now) {
		m, _ := st.Memory()
		out[g.String()] = previewOption{
			State:        st,
			IntervalDays: float64(m.DueAt.Sub(m.LastReviewedAt)) / float64(24*time.Hour),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Reschedule(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cardResponse(c))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Reset(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"reset": n})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts := store.ExportOptions{IncludeLogs: r.URL.Query().Get("logs") == "true"}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="fsrs45-export.json"`)
	if err := s.store.ExportJSON(r.Context(), w, opts); err != nil {
		// Headers are already sent once streaming starts.
		s.log.Error("export failed", zap.Error(err))
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	strategy, err := store.ParseMergeStrategy(q.Get("strategy"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	opts := store.ImportOptions{
		Strategy: strategy,
		DryRun:   q.Get("dry_run") == "true",
	}
	result, err := s.store.ImportJSON(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.AllReviewLogs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.evaluator.Evaluate(r.Context(), logs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
