package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
)

type NotificationRepository interface {
	Append(ctx context.Context, notification *models.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
}

type NotificationStore struct {
	db *gorm.DB
}

func (s *NotificationStore) Append(ctx context.Context, notification *models.Notification) error {
	if notification.UserID == uuid.Nil {
		return apperror.Validation("notification recipient is required", map[string]string{"userId": "required"})
	}
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(notification).Error, "")
}

func (s *NotificationStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Request.Donation").
		Preload("Request.Receiver.User").
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, translate(err, "")
	}
	return notifications, nil
}
