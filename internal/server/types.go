package server

import (
	"github.com/jlin/opinion-data/internal/connection"
	"github.com/jlin/opinion-data/internal/model"
)

// TopicListResponse is the payload for list, search, and filter routes.
type TopicListResponse struct {
	Items  []model.Topic `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// TopicDetailResponse wraps a single topic.
type TopicDetailResponse struct {
	Data model.Topic `json:"data"`
}

// ErrorDetail describes one API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse reports service and stream health.
type HealthResponse struct {
	Status             string            `json:"status"` // healthy or degraded
	WebSocketConnected bool              `json:"websocket_connected"`
	WebSocketDetails   connection.Status `json:"websocket_details"`
	CacheSize          int               `json:"cache_size"`
}

// CacheDebugResponse exposes store internals for diagnostics.
type CacheDebugResponse struct {
	Size       int `json:"size"`
	MaxSize    int `json:"max_size"`
	IndexWords int `json:"index_words"`
}
