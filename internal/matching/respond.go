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

type Action string

const (
	ActionAccept Action = "ACCEPT"
	ActionReject Action = "REJECT"
)

func ParseAction(raw string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActionAccept:
		return ActionAccept, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", apperror.Validation("Invalid action. Must be ACCEPT or REJECT", map[string]string{"action": "must be ACCEPT or REJECT"})
	}
}

// Respond applies a donor's decision to a PENDING request.
//
// Accepting claims the donation for the request's receiver, credits the donor
// with the reward points and rejects every other PENDING request on the same
// donation. Those cascade-rejected receivers are not notified; only the
// receiver of the decided request is. All of it commits or none of it does.
//
// Concurrent accepts on the same donation serialize on the donation row lock.
// The loser re-reads its request and the donation inside its own transaction
// and fails with a conflict.
func (e *Engine) Respond(ctx context.Context, caller models.Caller, requestID uuid.UUID, action Action) (*models.DonationRequest, error) {
	if err := caller.Require(models.RoleDonor); err != nil {
		return nil, err
	}
	action, err := ParseAction(string(action))
	if err != nil {
		return nil, err
	}

	request, err := e.repo.Requests().FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestPending {
		return nil, alreadyResolved(request.Status)
	}
	donor, err := e.repo.Users().DonorByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if request.Donation == nil || request.Donation.DonorID != donor.ID {
		return nil, apperror.Forbidden("You do not have permission to respond to this request")
	}
	if request.Receiver == nil || request.Receiver.User == nil {
		return nil, apperror.Internal("request has no receiver", nil)
	}

	next := models.RequestRejected
	if action == ActionAccept {
		next = models.RequestAccepted
	}

	var rejected int64
	err = e.repo.Transaction(ctx, func(tx store.Repository) error {
		donation, err := tx.Donations().LockByID(ctx, request.DonationID)
		if err != nil {
			return err
		}
		current, err := tx.Requests().FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Status != models.RequestPending {
			return alreadyResolved(current.Status)
		}
		if action == ActionAccept && donation.Status != models.DonationAvailable {
			if donation.Status == models.DonationClaimed {
				return apperror.Conflict("Donation has already been claimed")
			}
			return apperror.Conflict(fmt.Sprintf("Cannot accept a request for a donation that is %s", strings.ToLower(string(donation.Status))))
		}

		if err := tx.Requests().Resolve(ctx, requestID, next); err != nil {
			return err
		}
		if action == ActionAccept {
			if err := tx.Donations().Claim(ctx, donation.ID, request.ReceiverID); err != nil {
				return err
			}
			if err := tx.Users().AddDonorPoints(ctx, donor.ID, e.reward); err != nil {
				return err
			}
			if rejected, err = tx.Requests().RejectPendingSiblings(ctx, donation.ID, requestID); err != nil {
				return err
			}
		}

		return tx.Notifications().Append(ctx, decisionNotification(request, donor, action))
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			logrus.WithError(err).WithField("request_id", requestID).Error("respond transaction failed")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":  requestID,
		"donation_id": request.DonationID,
		"action":      action,
		"rejected":    rejected,
	}).Info("donation request resolved")

	eventType := rabbitmq.RequestRejected
	if action == ActionAccept {
		eventType = rabbitmq.RequestAccepted
	}
	e.publish(ctx, rabbitmq.DonationEvent{
		Type:       eventType,
		DonationID: request.DonationID,
		RequestID:  &request.ID,
		DonorID:    donor.ID,
		ReceiverID: &request.ReceiverID,
		Rejected:   rejected,
	})

	return e.repo.Requests().FindByID(ctx, requestID)
}

func decisionNotification(request *models.DonationRequest, donor *models.Donor, action Action) *models.Notification {
	donorName := ""
	if donor.User != nil {
		donorName = donor.User.Name
	}
	n := &models.Notification{
		UserID:    request.Receiver.UserID,
		Title:     "Donation Request Rejected",
		Message:   fmt.Sprintf("%s has rejected your request for: %s", donorName, request.Donation.Title),
		Type:      models.NotificationRequestRejected,
		RequestID: &request.ID,
	}
	if action == ActionAccept {
		n.Title = "Donation Request Accepted"
		n.Message = fmt.Sprintf("%s has accepted your request for: %s", donorName, request.Donation.Title)
		n.Type = models.NotificationRequestAccepted
	}
	return n
}

func alreadyResolved(status models.RequestStatus) error {
	return apperror.Conflict(fmt.Sprintf("This request has already been %s", strings.ToLower(string(status))))
}
