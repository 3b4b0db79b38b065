package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateDonor(ctx context.Context, donor *models.Donor) error
	CreateReceiver(ctx context.Context, receiver *models.Receiver) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	DonorByUserID(ctx context.Context, userID uuid.UUID) (*models.Donor, error)
	ReceiverByUserID(ctx context.Context, userID uuid.UUID) (*models.Receiver, error)
	AddDonorPoints(ctx context.Context, donorID uuid.UUID, delta int) error
	UpdateName(ctx context.Context, userID uuid.UUID, name string) error
	UpdateDonorContact(ctx context.Context, donorID uuid.UUID, contact ContactUpdate) error
	UpdateReceiverContact(ctx context.Context, receiverID uuid.UUID, contact ContactUpdate) error
}

// ContactUpdate carries optional profile fields; nil leaves a column as is.
type ContactUpdate struct {
	Phone   *string
	Address *string
}

func (c ContactUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Phone != nil {
		cols["phone"] = *c.Phone
	}
	if c.Address != nil {
		cols["address"] = *c.Address
	}
	return cols
}

type UserStore struct {
	db *gorm.DB
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Omit("Donor", "Receiver").Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User with this email already exists")
		}
		return translate(err, "")
	}
	return nil
}

func (s *UserStore) CreateDonor(ctx context.Context, donor *models.Donor) error {
	return translate(s.db.WithContext(ctx).Omit("User").Create(donor).Error, "")
}

func (s *UserStore) CreateReceiver(ctx context.Context, receiver *models.Receiver) error {
	return translate(s.db.WithContext(ctx).Omit("User").Create(receiver).Error, "")
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Donor").
		Preload("Receiver").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

func (s *UserStore) DonorByUserID(ctx context.Context, userID uuid.UUID) (*models.Donor, error) {
	var donor models.Donor
	if err := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&donor).Error; err != nil {
		return nil, translate(err, "Donor profile not found")
	}
	return &donor, nil
}

func (s *UserStore) ReceiverByUserID(ctx context.Context, userID uuid.UUID) (*models.Receiver, error) {
	var receiver models.Receiver
	if err := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&receiver).Error; err != nil {
		return nil, translate(err, "Receiver profile not found")
	}
	return &receiver, nil
}

func (s *UserStore) AddDonorPoints(ctx context.Context, donorID uuid.UUID, delta int) error {
	res := s.db.WithContext(ctx).
		Model(&models.Donor{}).
		Where("id = ?", donorID).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Donor profile not found")
	}
	return nil
}

func (s *UserStore) UpdateName(ctx context.Context, userID uuid.UUID, name string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("name", name)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (s *UserStore) UpdateDonorContact(ctx context.Context, donorID uuid.UUID, contact ContactUpdate) error {
	return s.updateContact(ctx, &models.Donor{}, donorID, contact, "Donor profile not found")
}

func (s *UserStore) UpdateReceiverContact(ctx context.Context, receiverID uuid.UUID, contact ContactUpdate) error {
	return s.updateContact(ctx, &models.Receiver{}, receiverID, contact, "Receiver profile not found")
}

func (s *UserStore) updateContact(ctx context.Context, model interface{}, id uuid.UUID, contact ContactUpdate, notFound string) error {
	cols := contact.columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(notFound)
	}
	return nil
}
