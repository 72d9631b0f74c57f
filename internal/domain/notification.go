package domain

import (
	"context"

	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type NotificationService struct {
	repos Repos
}

func NewNotificationService(repos Repos) *NotificationService {
	return &NotificationService{repos}
}

// Users only ever see their own notifications, suspended or not.
func (s *NotificationService) List(ctx context.Context, actor *models.Actor) ([]models.Notification, error) {
	if actor == nil {
		return nil, models.ErrPermDenied
	}
	return s.repos.Notifications.ListNotifications(ctx, actor.ID)
}

func (s *NotificationService) Delete(ctx context.Context, actor *models.Actor, notifID uuid.UUID) error {
	if actor == nil {
		return models.ErrPermDenied
	}
	return s.repos.Notifications.DeleteNotification(ctx, actor.ID, notifID)
}
