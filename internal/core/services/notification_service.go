package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

type notificationService struct {
	BaseService
	repo portsrepo.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo portsrepo.NotificationRepository) portssvc.NotificationSvc {
	return &notificationService{repo: repo}
}

var _ portssvc.NotificationSvc = (*notificationService)(nil)

// Notify stores n unless a notification of the same kind already exists for the entity.
func (s *notificationService) Notify(ctx context.Context, n domain.Notification) (bool, error) {
	if n.Title == "" {
		return false, fmt.Errorf("%w: notification title is required", apperrors.ErrValidation)
	}
	if n.NotificationID == "" {
		n.NotificationID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock()
	}
	created, err := s.repo.CreateNotification(ctx, n)
	if err != nil {
		s.LogError(ctx, err, "Failed to create notification", slog.String("kind", string(n.Kind)))
		return false, err
	}
	if created {
		s.LogDebug(ctx, "Notification created",
			slog.String("kind", string(n.Kind)),
			slog.String("entity_id", n.EntityID))
	}
	return created, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, params dto.ListNotificationsParams) ([]domain.Notification, error) {
	list, err := s.repo.ListNotifications(ctx, userID, params.UnreadOnly, pagination.NormalizeLimit(params.Limit, 50, 200))
	if err != nil {
		s.LogError(ctx, err, "Failed to list notifications")
		return nil, err
	}
	if list == nil {
		list = []domain.Notification{}
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
