package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
)

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	// LockByID reads the row with FOR UPDATE. It is the serialization point
	// for every matching decision on the donation.
	LockByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	List(ctx context.Context, filter DonationFilter) ([]models.Donation, error)
	Transition(ctx context.Context, id uuid.UUID, from, to models.DonationStatus) error
	Claim(ctx context.Context, id, receiverID uuid.UUID) error
	ListExpired(ctx context.Context, now time.Time) ([]models.Donation, error)
}

// DonationFilter narrows List. Zero values are ignored.
type DonationFilter struct {
	Status     models.DonationStatus
	FoodType   string
	DonorID    uuid.UUID
	ReceiverID uuid.UUID
	// WithParties preloads donor and receiver with their users.
	WithParties bool
}

type DonationStore struct {
	db *gorm.DB
}

func (s *DonationStore) Create(ctx context.Context, donation *models.Donation) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(donation).Error, "")
}

func (s *DonationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	err := s.db.WithContext(ctx).
		Preload("Donor.User").
		Preload("Receiver.User").
		First(&donation, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "Donation not found")
	}
	return &donation, nil
}

func (s *DonationStore) LockByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&donation, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "Donation not found")
	}
	return &donation, nil
}

func (s *DonationStore) List(ctx context.Context, filter DonationFilter) ([]models.Donation, error) {
	q := s.db.WithContext(ctx).Model(&models.Donation{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.FoodType != "" {
		q = q.Where("food_type = ?", filter.FoodType)
	}
	if filter.DonorID != uuid.Nil {
		q = q.Where("donor_id = ?", filter.DonorID)
	}
	if filter.ReceiverID != uuid.Nil {
		q = q.Where("receiver_id = ?", filter.ReceiverID)
	}
	if filter.WithParties {
		q = q.Preload("Donor.User").Preload("Receiver.User")
	}

	donations := []models.Donation{}
	if err := q.Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, translate(err, "")
	}
	return donations, nil
}

// Transition moves a donation from one status to another. It fails with a
// conflict when the row is no longer in the expected status.
func (s *DonationStore) Transition(ctx context.Context, id uuid.UUID, from, to models.DonationStatus) error {
	if !from.CanTransitionTo(to) {
		return apperror.Conflict(fmt.Sprintf("Donation cannot move from %s to %s", strings.ToLower(string(from)), strings.ToLower(string(to))))
	}
	res := s.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict(fmt.Sprintf("Donation is no longer %s", strings.ToLower(string(from))))
	}
	return nil
}

// Claim binds the donation to a receiver. Only an AVAILABLE donation can be
// claimed; a losing concurrent accept sees zero rows affected.
func (s *DonationStore) Claim(ctx context.Context, id, receiverID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, models.DonationAvailable).
		Updates(map[string]interface{}{
			"status":      models.DonationClaimed,
			"receiver_id": receiverID,
		})
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("Donation has already been claimed")
	}
	return nil
}

func (s *DonationStore) ListExpired(ctx context.Context, now time.Time) ([]models.Donation, error) {
	donations := []models.Donation{}
	err := s.db.WithContext(ctx).
		Where("status = ? AND expiration_date IS NOT NULL AND expiration_date < ?", models.DonationAvailable, now).
		Order("expiration_date ASC").
		Find(&donations).Error
	if err != nil {
		return nil, translate(err, "")
	}
	return donations, nil
}
