package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
	"github.com/tbourn/go-restaurant-ops/internal/observability"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
	"github.com/tbourn/go-restaurant-ops/internal/utils"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// NotificationService owns the restaurant notification inbox.
type NotificationService struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

// Emit persists n and forwards it to the event bus. Bus failures are logged
// only; the stored notification is the source of truth.
func (s *NotificationService) Emit(ctx context.Context, n *domain.Notification) error {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "Emit",
		trace.WithAttributes(
			attribute.String("target.id", n.TargetID),
			attribute.String("notification.type", string(n.Type)),
		),
	)
	defer span.End()

	if err := repo.CreateNotification(ctx, s.DB, n); err != nil {
		return err
	}
	observability.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()

	if s.Publisher != nil {
		msg := events.Message{
			Type:       events.TypeNotificationCreated,
			Key:        n.TargetID,
			OccurredAt: n.CreatedAt,
			Payload:    n,
		}
		if err := s.Publisher.Publish(ctx, msg); err != nil {
			log.Warn().Err(err).
				Str("notification_id", n.ID).
				Str("target_id", n.TargetID).
				Msg("publish notification failed")
		}
	}
	return nil
}

// List returns a target's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, targetID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("target.id", targetID),
			attribute.Bool("unread_only", unreadOnly),
		),
	)
	defer span.End()

	if targetID == "" {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	limit = utils.Clamp(limit, 1, maxNotificationLimit)
	return repo.ListNotifications(ctx, s.DB, targetID, unreadOnly, limit)
}

// MarkRead sets the read flag of one of the target's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, targetID, id string, read bool) error {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "MarkRead",
		trace.WithAttributes(
			attribute.String("target.id", targetID),
			attribute.String("notification.id", id),
		),
	)
	defer span.End()

	if targetID == "" {
		return ErrUnauthenticated
	}
	err := repo.SetNotificationRead(ctx, s.DB, targetID, id, read)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

