// Package events defines the service's Kafka topics, event payloads, and the
// producer/consumer plumbing around them.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	// TopicRouteEvents carries route lifecycle notifications.
	TopicRouteEvents = "route.events"
	// TopicAnalysisRequests carries pending analysis work for the consumer.
	TopicAnalysisRequests = "analysis.requests"
	// TopicAnalysisEvents carries analysis completion notifications.
	TopicAnalysisEvents = "analysis.events"
)

// Event types.
const (
	RouteCreated      = "route.created"
	RouteExported     = "route.exported"
	AnalysisRequested = "analysis.requested"
	AnalysisCompleted = "analysis.completed"
	AnalysisFailed    = "analysis.failed"
)

// RouteCreatedEvent is published when a route is saved.
type RouteCreatedEvent struct {
	RouteID       uuid.UUID `json:"route_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	Source        string    `json:"source"`
	WaypointCount int       `json:"waypoint_count"`
	DistanceMiles float64   `json:"distance_miles"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// RouteExportedEvent is published when a route is rendered to GPX.
type RouteExportedEvent struct {
	RouteID       uuid.UUID `json:"route_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Filename      string    `json:"filename"`
	WaypointCount int       `json:"waypoint_count"`
	IncludeTrack  bool      `json:"include_track"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AnalysisRequestedEvent queues a pending trail analysis for processing.
type AnalysisRequestedEvent struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	UserID     uuid.UUID `json:"user_id"`
	PhotoCount int       `json:"photo_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AnalysisCompletedEvent is published when an analysis finishes successfully.
type AnalysisCompletedEvent struct {
	AnalysisID   uuid.UUID `json:"analysis_id"`
	UserID       uuid.UUID `json:"user_id"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// AnalysisFailedEvent is published when an analysis cannot be completed.
type AnalysisFailedEvent struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	UserID     uuid.UUID `json:"user_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
