package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jlin/opinion-data/internal/connection"
	"github.com/jlin/opinion-data/internal/model"
	"github.com/jlin/opinion-data/internal/topic"
)

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), s.cfg.DefaultLimit)
	if err != nil || limit < 1 {
		s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "limit must be a positive integer")
		return
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "offset must be a non-negative integer")
		return
	}

	before, err := queryTime(q.Get("end_date_before"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "end_date_before must be RFC 3339")
		return
	}
	after, err := queryTime(q.Get("end_date_after"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "end_date_after must be RFC 3339")
		return
	}

	items, total := s.topics.List(topic.ListOptions{
		Limit:         limit,
		Offset:        offset,
		EndDateBefore: before,
		EndDateAfter:  after,
		OrderBy:       q.Get("order_by"),
		Order:         q.Get("order"),
	})

	s.writeJSON(w, http.StatusOK, TopicListResponse{
		Items:  nonNil(items),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleSearchTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := q.Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "q is required")
		return
	}

	limit, err := queryInt(q.Get("limit"), 100)
	if err != nil || limit < 1 {
		s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "limit must be a positive integer")
		return
	}

	fuzzy := true
	if v := q.Get("fuzzy"); v != "" {
		fuzzy, err = strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "fuzzy must be a boolean")
			return
		}
	}

	items := s.topics.Search(query, limit, fuzzy)

	s.writeJSON(w, http.StatusOK, TopicListResponse{
		Items:  nonNil(items),
		Total:  len(items),
		Limit:  limit,
		Offset: 0,
	})
}

func (s *Server) handleFilterTopics(w http.ResponseWriter, r *http.Request) {
	var req topic.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	limit := s.cfg.DefaultLimit
	offset := 0
	if req.Pagination != nil {
		if req.Pagination.Limit < 0 || req.Pagination.Offset < 0 {
			s.writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "pagination bounds must be non-negative")
			return
		}
		if req.Pagination.Limit > 0 {
			limit = req.Pagination.Limit
		}
		offset = req.Pagination.Offset
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	items, total := s.topics.Filter(req)

	s.writeJSON(w, http.StatusOK, TopicListResponse{
		Items:  nonNil(items),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	t, ok := s.topics.GetByID(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "Topic "+id+" not found")
		return
	}

	s.writeJSON(w, http.StatusOK, TopicDetailResponse{Data: t})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var status connection.Status
	if s.stream != nil {
		status = s.stream.Status()
	}

	resp := HealthResponse{
		Status:             "healthy",
		WebSocketConnected: status.Connected,
		WebSocketDetails:   status,
		CacheSize:          s.store.Count(),
	}
	if !status.Connected {
		resp.Status = "degraded"
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCacheDebug(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()

	s.writeJSON(w, http.StatusOK, CacheDebugResponse{
		Size:       stats.Size,
		MaxSize:    stats.MaxSize,
		IndexWords: stats.IndexWords,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// nonNil keeps empty listings as [] rather than null in JSON.
func nonNil(topics []model.Topic) []model.Topic {
	if topics == nil {
		return []model.Topic{}
	}
	return topics
}
