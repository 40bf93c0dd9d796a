package repositories

import (
	"context"
	"time"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateInApp writes one durable exposure notice. The store does not dedup;
// callers must decide before calling whether the recipient was already
// notified in this run.
func (r *NotificationRepository) CreateInApp(ctx context.Context, recipientRef, conditionID, vagueElapsed string) (uuid.UUID, error) {
	notification := &models.Notification{
		RecipientRef: recipientRef,
		ConditionID:  conditionID,
		VagueElapsed: vagueElapsed,
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return uuid.Nil, err
	}
	return notification.ID, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientRef string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient_ref = ?", recipientRef).
		Order("delivered_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead sets read_at exactly once; a second call is a no-op so the
// original read time is never overwritten.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", time.Now()).Error
}
