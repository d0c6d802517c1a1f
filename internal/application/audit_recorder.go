package application

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/internal/domain/entity"
	repo "github.com/oksasatya/invest-tracker/internal/domain/repository"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
)

// Disposition tells the consumer what to do with a delivery.
type Disposition int

const (
	Ack Disposition = iota
	// Drop rejects a message that can never succeed.
	Drop
	// Retry puts the message back on the queue.
	Retry
)

var errMalformedEvent = errors.New("malformed auth event")

// AuditRecorder persists auth events read from the queue.
type AuditRecorder struct {
	Repo   repo.AuthEventRepository
	Logger *logrus.Logger
}

func NewAuditRecorder(r repo.AuthEventRepository, logger *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{Repo: r, Logger: logger}
}

func (a *AuditRecorder) Handle(ctx context.Context, body []byte) Disposition {
	ev, err := decodeAuthEvent(body)
	if err != nil {
		helpers.LogWarn(a.Logger, "dropping auth event", err, nil)
		return Drop
	}
	if err := a.Repo.Insert(ctx, ev); err != nil {
		helpers.LogError(a.Logger, "store auth event failed", err, logrus.Fields{"event_id": ev.ID, "type": string(ev.Type)})
		return Retry
	}
	helpers.LogDebug(a.Logger, "auth event stored", logrus.Fields{"event_id": ev.ID, "type": string(ev.Type)})
	return Ack
}

func decodeAuthEvent(body []byte) (entity.AuthEvent, error) {
	var ev entity.AuthEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, errors.Join(errMalformedEvent, err)
	}
	switch ev.Type {
	case entity.EventUserRegistered, entity.EventLoginSucceeded, entity.EventLoginFailed:
	default:
		return ev, errors.Join(errMalformedEvent, errors.New("unknown type "+string(ev.Type)))
	}
	if ev.ID == "" || ev.Email == "" || ev.OccurredAt.IsZero() {
		return ev, errors.Join(errMalformedEvent, errors.New("missing id, email or occurred_at"))
	}
	return ev, nil
}
