package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
	"github.com/HuNTer8272/surplus2share-project/internal/store"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

// ListFilter carries the optional query filters of the public listing.
type ListFilter struct {
	Status   string
	FoodType string
}

func (e *Engine) CreateDonation(ctx context.Context, caller models.Caller, in DonationInput) (*models.Donation, error) {
	if err := caller.Require(models.RoleDonor); err != nil {
		return nil, err
	}
	parsed, err := e.validateDonation(in)
	if err != nil {
		return nil, err
	}
	donor, err := e.repo.Users().DonorByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	donation := &models.Donation{
		Title:          parsed.input.Title,
		Description:    parsed.input.Description,
		FoodType:       parsed.input.FoodType,
		Quantity:       parsed.input.Quantity,
		QuantityUnit:   parsed.input.QuantityUnit,
		PickupAddress:  parsed.input.PickupAddress,
		PickupDate:     parsed.pickup,
		ExpirationDate: parsed.expiration,
		Status:         models.DonationAvailable,
		DonorID:        donor.ID,
	}
	if err := e.repo.Donations().Create(ctx, donation); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"donation_id": donation.ID, "donor_id": donor.ID}).Info("donation created")
	e.publish(ctx, rabbitmq.DonationEvent{Type: rabbitmq.DonationCreated, DonationID: donation.ID, DonorID: donor.ID})
	return donation, nil
}

// GetDonation is open to any caller, but a donor may only see their own.
func (e *Engine) GetDonation(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Donation, error) {
	if err := caller.Authenticated(); err != nil {
		return nil, err
	}
	donation, err := e.repo.Donations().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == models.RoleDonor {
		donor, err := e.repo.Users().DonorByUserID(ctx, caller.UserID)
		if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
			return nil, err
		}
		if donor == nil || donation.DonorID != donor.ID {
			return nil, apperror.Forbidden("You do not have permission to view this donation")
		}
	}
	return donation, nil
}

func (e *Engine) ListDonations(ctx context.Context, caller models.Caller, filter ListFilter) ([]models.Donation, error) {
	if err := caller.Authenticated(); err != nil {
		return nil, err
	}
	q := store.DonationFilter{FoodType: strings.TrimSpace(filter.FoodType), WithParties: true}
	if raw := strings.TrimSpace(filter.Status); raw != "" {
		status := models.DonationStatus(strings.ToUpper(raw))
		switch status {
		case models.DonationAvailable, models.DonationClaimed, models.DonationCompleted, models.DonationCancelled:
			q.Status = status
		default:
			return nil, apperror.Validation("Invalid status filter", map[string]string{"status": "must be one of AVAILABLE, CLAIMED, COMPLETED, CANCELLED"})
		}
	}
	return e.repo.Donations().List(ctx, q)
}

func (e *Engine) ListAvailable(ctx context.Context, caller models.Caller) ([]models.Donation, error) {
	if err := caller.Require(models.RoleReceiver); err != nil {
		return nil, err
	}
	if _, err := e.repo.Users().ReceiverByUserID(ctx, caller.UserID); err != nil {
		return nil, err
	}
	return e.repo.Donations().List(ctx, store.DonationFilter{Status: models.DonationAvailable, WithParties: true})
}

// ListMine returns the donor's own listings, or for a receiver the donations
// that were claimed for them.
func (e *Engine) ListMine(ctx context.Context, caller models.Caller) ([]models.Donation, error) {
	switch caller.Role {
	case models.RoleDonor:
		donor, err := e.repo.Users().DonorByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		return e.repo.Donations().List(ctx, store.DonationFilter{DonorID: donor.ID})
	case models.RoleReceiver:
		receiver, err := e.repo.Users().ReceiverByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		return e.repo.Donations().List(ctx, store.DonationFilter{ReceiverID: receiver.ID})
	default:
		if err := caller.Authenticated(); err != nil {
			return nil, err
		}
		return nil, apperror.Validation("Invalid user role", nil)
	}
}

// CancelDonation withdraws an AVAILABLE listing. Pending requests on it are
// left untouched.
func (e *Engine) CancelDonation(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Donation, error) {
	return e.ownerTransition(ctx, caller, id, models.DonationCancelled, "cancel", rabbitmq.DonationCancelled)
}

// CompleteDonation records that a claimed donation was picked up.
func (e *Engine) CompleteDonation(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Donation, error) {
	return e.ownerTransition(ctx, caller, id, models.DonationCompleted, "complete", rabbitmq.DonationCompleted)
}

func (e *Engine) ownerTransition(ctx context.Context, caller models.Caller, id uuid.UUID, to models.DonationStatus, action, eventType string) (*models.Donation, error) {
	if err := caller.Require(models.RoleDonor); err != nil {
		return nil, err
	}
	donor, err := e.repo.Users().DonorByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	var receiverID *uuid.UUID
	err = e.repo.Transaction(ctx, func(tx store.Repository) error {
		donation, err := tx.Donations().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if donation.DonorID != donor.ID {
			return apperror.Forbidden(fmt.Sprintf("You do not have permission to %s this donation", action))
		}
		if !donation.Status.CanTransitionTo(to) {
			return apperror.Conflict(fmt.Sprintf("Donation cannot be %s because it is %s", strings.ToLower(string(to)), strings.ToLower(string(donation.Status))))
		}
		receiverID = donation.ReceiverID
		return tx.Donations().Transition(ctx, id, donation.Status, to)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"donation_id": id, "donor_id": donor.ID, "status": to}).Info("donation status changed")
	e.publish(ctx, rabbitmq.DonationEvent{Type: eventType, DonationID: id, DonorID: donor.ID, ReceiverID: receiverID})
	return e.repo.Donations().FindByID(ctx, id)
}

// ExpireDonations cancels every AVAILABLE donation whose expiration date is
// before now and returns how many were cancelled. Each donation is handled in
// its own transaction so one failure does not block the rest.
func (e *Engine) ExpireDonations(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	expired, err := e.repo.Donations().ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, candidate := range expired {
		id := candidate.ID
		err := e.repo.Transaction(ctx, func(tx store.Repository) error {
			donation, err := tx.Donations().LockByID(ctx, id)
			if err != nil {
				return err
			}
			if donation.Status != models.DonationAvailable || donation.ExpirationDate == nil || !donation.ExpirationDate.Before(now) {
				return errSkip
			}
			return tx.Donations().Transition(ctx, id, models.DonationAvailable, models.DonationCancelled)
		})
		switch {
		case errors.Is(err, errSkip):
			continue
		case err != nil:
			logrus.WithError(err).WithField("donation_id", id).Warn("failed to expire donation")
			continue
		}
		cancelled++
		e.publish(ctx, rabbitmq.DonationEvent{Type: rabbitmq.DonationCancelled, DonationID: id, DonorID: candidate.DonorID})
	}
	return cancelled, nil
}

// errSkip rolls back a transaction that found nothing to do.
var errSkip = apperror.Conflict("skip")
