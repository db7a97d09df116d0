package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edusehat/education-service/internal/models"
)

// Source identifies this service in published events
const Source = "education-service"

// Event types
const (
	TypeStageStarted   = "progress.stage_started"
	TypeStageCompleted = "progress.stage_completed"
	TypeStageNotified  = "progress.stage_notified"
)

// Event is the envelope for all published domain events
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an event envelope with a fresh ID and timestamp
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// StageStartedEvent is published when a user opens a stage for the first time
type StageStartedEvent struct {
	UserID    string         `json:"user_id"`
	StageID   models.StageID `json:"stage_id"`
	StartedAt time.Time      `json:"started_at"`
}

// StageCompletedEvent is published when a stage is completed
type StageCompletedEvent struct {
	UserID      string          `json:"user_id"`
	StageID     models.StageID  `json:"stage_id"`
	CompletedAt time.Time       `json:"completed_at"`
	NextStageID *models.StageID `json:"next_stage_id,omitempty"`
}

// StageNotifiedEvent is published when the availability sweep processes a row
type StageNotifiedEvent struct {
	UserID     string         `json:"user_id"`
	StageID    models.StageID `json:"stage_id"`
	Email      string         `json:"email,omitempty"`
	Delivered  bool           `json:"delivered"`
	NotifiedAt time.Time      `json:"notified_at"`
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
