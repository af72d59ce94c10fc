package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

type notificationService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, recipientID uint, role models.Role, activityType models.ActivityType, message string, relatedID *uint) error {
	notification := &models.Notification{
		RecipientID:   recipientID,
		RecipientRole: role,
		Message:       message,
		ActivityType:  activityType,
		RelatedID:     relatedID,
	}
	if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
		return err
	}
	s.logger.Debug("notification stored", "notification_id", notification.ID, "recipient_id", recipientID, "activity", activityType)
	return nil
}

func (s *notificationService) List(ctx context.Context, actor *auth.Principal, filters repositories.NotificationFilters) (*NotificationListResponse, error) {
	notifications, total, err := s.repo.Notification().ListByRecipient(ctx, nil, actor.ID, actor.Role, filters)
	if err != nil {
		return nil, err
	}

	unseenFilters := filters
	unseenFilters.UnseenOnly = true
	unseenFilters.Limit = 1
	unseenFilters.Offset = 0
	_, unseen, err := s.repo.Notification().ListByRecipient(ctx, nil, actor.ID, actor.Role, unseenFilters)
	if err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return &NotificationListResponse{
		Notifications: notifications,
		UnseenCount:   unseen,
		Pagination:    models.NewPagination(filters.Offset/limit+1, limit, total),
	}, nil
}

// MarkSeen only works on the caller's own notifications.
func (s *notificationService) MarkSeen(ctx context.Context, actor *auth.Principal, id uint) error {
	notification, err := s.repo.Notification().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if notification.RecipientID != actor.ID || notification.RecipientRole != actor.Role {
		return NewPermissionError(actor.ID, string(actor.Role), id, "notification", "mark_seen", "not the recipient")
	}
	return s.repo.Notification().MarkSeen(ctx, nil, id)
}

// HandleEvent turns an activity event from the bus into a stored
// notification. Unknown event types are skipped, not failed, so the
// consumer never wedges on foreign messages.
func (s *notificationService) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeActivity {
		s.logger.Debug("skipping event", "event_type", event.Type)
		return nil
	}

	payload, err := decodeActivityPayload(event.Data)
	if err != nil {
		s.logger.Warn("undecodable activity event", "event_id", event.ID, "error", err)
		return nil
	}

	role := models.Role(payload.RecipientRole)
	if !role.Valid() {
		s.logger.Warn("activity event with unknown role", "event_id", event.ID, "role", payload.RecipientRole)
		return nil
	}

	return s.Notify(ctx, payload.RecipientID, role, models.ActivityType(payload.ActivityType), payload.Message, payload.RelatedID)
}

// decodeActivityPayload copes with Data arriving either as the typed struct
// (in-process publish) or as generic JSON from the wire.
func decodeActivityPayload(data any) (*events.ActivityPayload, error) {
	if payload, ok := data.(events.ActivityPayload); ok {
		return &payload, nil
	}
	if payload, ok := data.(*events.ActivityPayload); ok {
		return payload, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to re-marshal event data: %w", err)
	}
	var payload events.ActivityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode activity payload: %w", err)
	}
	return &payload, nil
}
