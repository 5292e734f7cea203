package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/relinkd/relink/internal/app/model"
)

// VisitPublisher hands resolved visits to the external analytics pipeline
// via NATS JetStream. The resolver itself records nothing; this is its only
// outbound side effect and it is best effort.
type VisitPublisher struct {
	js nats.JetStreamContext
}

// NewVisitPublisher creates a publisher on the given JetStream context.
func NewVisitPublisher(js nats.JetStreamContext) *VisitPublisher {
	return &VisitPublisher{js: js}
}

// EnsureStream creates the visit stream if it does not exist yet.
func (p *VisitPublisher) EnsureStream() error {
	if _, err := p.js.StreamInfo(model.VisitStreamName); err == nil {
		return nil
	}
	_, err := p.js.AddStream(&nats.StreamConfig{
		Name:     model.VisitStreamName,
		Subjects: []string{model.VisitStreamSubject},
		MaxBytes: model.VisitStreamMaxBytes,
	})
	return err
}

// Publish emits one visit event.
func (p *VisitPublisher) Publish(code, outcome string, device model.DeviceClass, ip, userAgent string) error {
	event := model.VisitEvent{
		ID:        uuid.New().String(),
		Code:      code,
		Outcome:   outcome,
		Device:    string(device),
		IP:        ip,
		UserAgent: userAgent,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.VisitStreamSubject, data)
	return err
}
