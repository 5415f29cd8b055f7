package service

import (
	"context"
	"log/slog"
	"time"

	"go-videotube/internal/event"
	"go-videotube/internal/metrics"
	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	ListByActor(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error)
}

// AuditService persists auth events published on the bus. Writes happen
// off the request path so a slow store never delays a login.
type AuditService struct {
	store        auditStore
	writeTimeout time.Duration
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store, writeTimeout: 5 * time.Second}
}

// Run consumes bus events until ctx is cancelled, then drains what is
// already buffered.
func (s *AuditService) Run(ctx context.Context, bus event.Bus) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			s.record(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-events:
					s.record(e)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) record(e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	entry := model.AuditEntry{
		Action:     string(e.Type),
		OccurredAt: e.Timestamp,
		Actor:      model.AuditActor{UserID: e.ActorID, IP: e.ActorIP},
		Status:     e.Status,
		Resource:   e.Resource,
		Error:      e.Error,
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	if err := s.store.Log(ctx, entry); err != nil {
		metrics.AuditDropped.Inc()
		slog.Error("failed to persist audit entry", "action", entry.Action, "error", err)
	}
}

func (s *AuditService) ListByActor(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error) {
	items, err := s.store.ListByActor(ctx, userID, limit)
	if err != nil {
		return nil, apierror.Unavailable(err)
	}
	if items == nil {
		items = []model.AuditEntry{}
	}
	return items, nil
}
