package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const EventSource = "assessment-service"

type EventType string

const (
	AssessmentCreated   EventType = "assessment.created"
	AssessmentPublished EventType = "assessment.published"
	AssessmentDeleted   EventType = "assessment.deleted"
	SessionSubmitted    EventType = "session.submitted"
	SessionEvaluated    EventType = "session.evaluated"
	CourseCreated       EventType = "course.created"
)

type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    string                 `json:"user_id,omitempty"`
	Data      map[string]interface{} `json:"data"`
}

func NewEvent(eventType EventType, userID string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Data:      data,
	}
}

// EventPublisher delivers domain events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// PublishAndLog publishes and logs failures; events never fail the calling operation
func PublishAndLog(ctx context.Context, publisher EventPublisher, logger *slog.Logger, event *Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}
