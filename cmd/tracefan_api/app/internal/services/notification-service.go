package services

import (
	"context"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/models"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService struct {
	repo *repositories.NotificationRepository
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{repo: repositories.NewNotificationRepository(db)}
}

func (s *NotificationService) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *NotificationService) ListForRecipient(ctx context.Context, recipientRef string) ([]models.Notification, error) {
	return s.repo.ListForRecipient(ctx, recipientRef)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}
