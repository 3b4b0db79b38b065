package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
)

type RequestRepository interface {
	Create(ctx context.Context, request *models.DonationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DonationRequest, error)
	FindPending(ctx context.Context, donationID, receiverID uuid.UUID) (*models.DonationRequest, error)
	// FindLatest returns the newest request of any status for the pair.
	FindLatest(ctx context.Context, donationID, receiverID uuid.UUID) (*models.DonationRequest, error)
	DeletePending(ctx context.Context, donationID, receiverID uuid.UUID) error
	Resolve(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
	RejectPendingSiblings(ctx context.Context, donationID, acceptedID uuid.UUID) (int64, error)
	ListForDonor(ctx context.Context, donorID uuid.UUID, status models.RequestStatus) ([]models.DonationRequest, error)
	ListForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.DonationRequest, error)
}

type RequestStore struct {
	db *gorm.DB
}

func (s *RequestStore) Create(ctx context.Context, request *models.DonationRequest) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error
	if isUniqueViolation(err) {
		return &apperror.Error{Kind: apperror.KindConflict, Message: "You have already requested this donation", Err: err}
	}
	return translate(err, "")
}

func (s *RequestStore) FindByID(ctx context.Context, id uuid.UUID) (*models.DonationRequest, error) {
	var request models.DonationRequest
	err := s.db.WithContext(ctx).
		Preload("Donation.Donor.User").
		Preload("Receiver.User").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "Request not found")
	}
	return &request, nil
}

func (s *RequestStore) FindPending(ctx context.Context, donationID, receiverID uuid.UUID) (*models.DonationRequest, error) {
	var request models.DonationRequest
	err := s.db.WithContext(ctx).
		Where("donation_id = ? AND receiver_id = ? AND status = ?", donationID, receiverID, models.RequestPending).
		First(&request).Error
	if err != nil {
		return nil, translate(err, "Request not found or already processed")
	}
	return &request, nil
}

func (s *RequestStore) FindLatest(ctx context.Context, donationID, receiverID uuid.UUID) (*models.DonationRequest, error) {
	var request models.DonationRequest
	err := s.db.WithContext(ctx).
		Where("donation_id = ? AND receiver_id = ?", donationID, receiverID).
		Order("created_at DESC").
		First(&request).Error
	if err != nil {
		return nil, translate(err, "Request not found")
	}
	return &request, nil
}

func (s *RequestStore) DeletePending(ctx context.Context, donationID, receiverID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("donation_id = ? AND receiver_id = ? AND status = ?", donationID, receiverID, models.RequestPending).
		Delete(&models.DonationRequest{})
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Request not found or already processed")
	}
	return nil
}

// Resolve moves a PENDING request to ACCEPTED or REJECTED.
func (s *RequestStore) Resolve(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.DonationRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("This request has already been processed")
	}
	return nil
}

func (s *RequestStore) RejectPendingSiblings(ctx context.Context, donationID, acceptedID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.DonationRequest{}).
		Where("donation_id = ? AND id <> ? AND status = ?", donationID, acceptedID, models.RequestPending).
		Update("status", models.RequestRejected)
	if res.Error != nil {
		return 0, translate(res.Error, "")
	}
	return res.RowsAffected, nil
}

// ListForDonor returns requests on any of the donor's donations, optionally
// restricted to one status.
func (s *RequestStore) ListForDonor(ctx context.Context, donorID uuid.UUID, status models.RequestStatus) ([]models.DonationRequest, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN donations ON donations.id = donation_requests.donation_id").
		Where("donations.donor_id = ?", donorID)
	if status != "" {
		q = q.Where("donation_requests.status = ?", status)
	}

	requests := []models.DonationRequest{}
	err := q.
		Preload("Donation").
		Preload("Receiver.User").
		Order("donation_requests.created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translate(err, "")
	}
	return requests, nil
}

func (s *RequestStore) ListForReceiver(ctx context.Context, receiverID uuid.UUID) ([]models.DonationRequest, error) {
	requests := []models.DonationRequest{}
	err := s.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Preload("Donation.Donor.User").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translate(err, "")
	}
	return requests, nil
}
