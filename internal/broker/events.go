package broker

import (
	"context"
	"fmt"
	"time"

	"commerce-console/internal/models"

	"github.com/google/uuid"
)

// publisher is the narrow producer surface the audit trail needs; satisfied
// by Producer and by test fakes.
type publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// AuditPublisher emits an AdminActionEvent for every successful console
// mutation. Publishing is best-effort: a broker outage must never fail the
// user's operation, so callers log and move on.
type AuditPublisher struct {
	producer publisher
}

// NewAuditPublisher creates a new audit publisher
func NewAuditPublisher(producer publisher) *AuditPublisher {
	return &AuditPublisher{producer: producer}
}

// PublishAction publishes one audit event keyed by resource and entity id.
func (ap *AuditPublisher) PublishAction(ctx context.Context, eventType, resource, action string, entityID int64, actor string) error {
	if ap == nil || ap.producer == nil {
		return nil
	}

	event := &models.AdminActionEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		Resource: resource,
		Action:   action,
		EntityID: entityID,
		Actor:    actor,
	}

	key := fmt.Sprintf("%s-%d", resource, entityID)
	return ap.producer.PublishEvent(ctx, key, event)
}
