package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
	"github.com/HuNTer8272/surplus2share-project/internal/store"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

// RequestState is what a receiver sees about their own bid on a donation.
type RequestState struct {
	HasRequest bool                    `json:"hasRequest"`
	Status     *models.RequestStatus   `json:"requestStatus"`
	Request    *models.DonationRequest `json:"data"`
}

// CreateRequest places a PENDING request on an AVAILABLE donation and
// notifies the donor.
func (e *Engine) CreateRequest(ctx context.Context, caller models.Caller, donationID uuid.UUID, message *string) (*models.DonationRequest, error) {
	if err := caller.Require(models.RoleReceiver); err != nil {
		return nil, err
	}
	donation, err := e.repo.Donations().FindByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.Status != models.DonationAvailable {
		return nil, notAvailable(donation.Status)
	}
	receiver, err := e.repo.Users().ReceiverByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if message != nil && strings.TrimSpace(*message) == "" {
		message = nil
	}

	request := &models.DonationRequest{
		DonationID: donationID,
		ReceiverID: receiver.ID,
		Message:    message,
		Status:     models.RequestPending,
	}
	err = e.repo.Transaction(ctx, func(tx store.Repository) error {
		locked, err := tx.Donations().LockByID(ctx, donationID)
		if err != nil {
			return err
		}
		if locked.Status != models.DonationAvailable {
			return notAvailable(locked.Status)
		}

		existing, err := tx.Requests().FindPending(ctx, donationID, receiver.ID)
		if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
			return err
		}
		if existing != nil {
			return apperror.Conflict("You have already requested this donation")
		}

		if err := tx.Requests().Create(ctx, request); err != nil {
			return err
		}
		return tx.Notifications().Append(ctx, &models.Notification{
			UserID:    donation.Donor.UserID,
			Title:     "New Donation Request",
			Message:   fmt.Sprintf("%s has requested your donation: %s", receiver.User.Name, donation.Title),
			Type:      models.NotificationRequestSent,
			RequestID: &request.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":  request.ID,
		"donation_id": donationID,
		"receiver_id": receiver.ID,
	}).Info("donation request created")
	e.publish(ctx, rabbitmq.DonationEvent{
		Type:       rabbitmq.RequestCreated,
		DonationID: donationID,
		RequestID:  &request.ID,
		DonorID:    donation.DonorID,
		ReceiverID: &receiver.ID,
	})
	return request, nil
}

// WithdrawRequest deletes the caller's PENDING request. The donor is not
// notified.
func (e *Engine) WithdrawRequest(ctx context.Context, caller models.Caller, donationID uuid.UUID) error {
	if err := caller.Require(models.RoleReceiver); err != nil {
		return err
	}
	receiver, err := e.repo.Users().ReceiverByUserID(ctx, caller.UserID)
	if err != nil {
		return err
	}

	var donorID uuid.UUID
	err = e.repo.Transaction(ctx, func(tx store.Repository) error {
		donation, err := tx.Donations().LockByID(ctx, donationID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return apperror.NotFound("Request not found or already processed")
			}
			return err
		}
		donorID = donation.DonorID
		return tx.Requests().DeletePending(ctx, donationID, receiver.ID)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"donation_id": donationID, "receiver_id": receiver.ID}).Info("donation request withdrawn")
	e.publish(ctx, rabbitmq.DonationEvent{
		Type:       rabbitmq.RequestWithdrawn,
		DonationID: donationID,
		DonorID:    donorID,
		ReceiverID: &receiver.ID,
	})
	return nil
}

// GetRequestStatus reports the caller's most recent request on a donation.
func (e *Engine) GetRequestStatus(ctx context.Context, caller models.Caller, donationID uuid.UUID) (RequestState, error) {
	if err := caller.Require(models.RoleReceiver); err != nil {
		return RequestState{}, err
	}
	receiver, err := e.repo.Users().ReceiverByUserID(ctx, caller.UserID)
	if err != nil {
		return RequestState{}, err
	}

	request, err := e.repo.Requests().FindLatest(ctx, donationID, receiver.ID)
	if apperror.KindOf(err) == apperror.KindNotFound {
		return RequestState{}, nil
	}
	if err != nil {
		return RequestState{}, err
	}
	status := request.Status
	return RequestState{HasRequest: true, Status: &status, Request: request}, nil
}

// Inbox lists every request on the caller's donations.
func (e *Engine) Inbox(ctx context.Context, caller models.Caller) ([]models.DonationRequest, error) {
	return e.donorRequests(ctx, caller, "")
}

// AcceptedRequests lists the accepted requests on the caller's donations.
func (e *Engine) AcceptedRequests(ctx context.Context, caller models.Caller) ([]models.DonationRequest, error) {
	return e.donorRequests(ctx, caller, models.RequestAccepted)
}

func (e *Engine) donorRequests(ctx context.Context, caller models.Caller, status models.RequestStatus) ([]models.DonationRequest, error) {
	if err := caller.Require(models.RoleDonor); err != nil {
		return nil, err
	}
	donor, err := e.repo.Users().DonorByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return e.repo.Requests().ListForDonor(ctx, donor.ID, status)
}

// Outbox lists the caller's requests with each donation and its donor.
func (e *Engine) Outbox(ctx context.Context, caller models.Caller) ([]models.DonationRequest, error) {
	if err := caller.Require(models.RoleReceiver); err != nil {
		return nil, err
	}
	receiver, err := e.repo.Users().ReceiverByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return e.repo.Requests().ListForReceiver(ctx, receiver.ID)
}

func notAvailable(status models.DonationStatus) error {
	return apperror.Conflict(fmt.Sprintf("Cannot request this donation as it is %s", strings.ToLower(string(status))))
}
