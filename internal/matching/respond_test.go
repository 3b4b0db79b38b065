package matching

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

func TestAcceptClaimsDonationAndRejectsOthers(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	bob := f.receiver("bob")
	dan := f.receiver("dan")
	donation := f.donation(donor, "Bread")
	bobReq := f.request(bob, donation.ID)
	danReq := f.request(dan, donation.ID)

	resolved, err := f.engine.Respond(f.ctx, donor, bobReq.ID, ActionAccept)
	require.NoError(t, err)
	require.Equal(t, models.RequestAccepted, resolved.Status)

	claimed := f.reload(donation.ID)
	require.Equal(t, models.DonationClaimed, claimed.Status)
	require.NotNil(t, claimed.ReceiverID)
	require.Equal(t, f.receiverID(bob), *claimed.ReceiverID)
	require.Equal(t, models.RequestRejected, f.requestStatus(danReq.ID))
	require.Equal(t, 10, f.points(donor))

	bobNotes, err := f.engine.Notifications(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobNotes, 1)
	require.Equal(t, models.NotificationRequestAccepted, bobNotes[0].Type)
	require.Equal(t, "Donation Request Accepted", bobNotes[0].Title)
	require.Equal(t, "alice has accepted your request for: Bread", bobNotes[0].Message)

	danNotes, err := f.engine.Notifications(f.ctx, dan)
	require.NoError(t, err)
	require.Empty(t, danNotes)

	event := f.events.last()
	require.Equal(t, rabbitmq.RequestAccepted, event.Type)
	require.EqualValues(t, 1, event.Rejected)

	_, err = f.engine.CreateRequest(f.ctx, f.receiver("eve"), donation.ID, nil)
	requireKind(t, err, apperror.KindConflict)
	require.EqualError(t, err, "Cannot request this donation as it is claimed")
}

func TestRejectLeavesDonationAvailable(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	bob := f.receiver("bob")
	donation := f.donation(donor, "Bread")
	request := f.request(bob, donation.ID)

	resolved, err := f.engine.Respond(f.ctx, donor, request.ID, ActionReject)
	require.NoError(t, err)
	require.Equal(t, models.RequestRejected, resolved.Status)

	current := f.reload(donation.ID)
	require.Equal(t, models.DonationAvailable, current.Status)
	require.Nil(t, current.ReceiverID)
	require.Zero(t, f.points(donor))

	notes, err := f.engine.Notifications(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, models.NotificationRequestRejected, notes[0].Type)
	require.Equal(t, "alice has rejected your request for: Bread", notes[0].Message)
	require.Equal(t, rabbitmq.RequestRejected, f.events.last().Type)

	// a rejected receiver may ask again
	f.request(bob, donation.ID)
}

func TestRespondTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	donation := f.donation(donor, "Bread")
	request := f.request(f.receiver("bob"), donation.ID)

	_, err := f.engine.Respond(f.ctx, donor, request.ID, ActionAccept)
	require.NoError(t, err)

	_, err = f.engine.Respond(f.ctx, donor, request.ID, ActionReject)
	requireKind(t, err, apperror.KindConflict)
	require.EqualError(t, err, "This request has already been accepted")
	require.Equal(t, 10, f.points(donor))
}

func TestRespondChecks(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	bob := f.receiver("bob")
	donation := f.donation(donor, "Bread")
	request := f.request(bob, donation.ID)

	_, err := f.engine.Respond(f.ctx, f.donor("carol"), request.ID, ActionAccept)
	requireKind(t, err, apperror.KindForbidden)
	require.EqualError(t, err, "You do not have permission to respond to this request")

	_, err = f.engine.Respond(f.ctx, bob, request.ID, ActionAccept)
	requireKind(t, err, apperror.KindForbidden)

	_, err = f.engine.Respond(f.ctx, donor, request.ID, Action("MAYBE"))
	requireKind(t, err, apperror.KindValidation)
	require.EqualError(t, err, "Invalid action. Must be ACCEPT or REJECT")

	_, err = f.engine.Respond(f.ctx, donor, uuid.New(), ActionAccept)
	requireKind(t, err, apperror.KindNotFound)

	require.Equal(t, models.RequestPending, f.requestStatus(request.ID))
}

func TestAcceptOnCancelledDonationConflicts(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	donation := f.donation(donor, "Bread")
	request := f.request(f.receiver("bob"), donation.ID)
	_, err := f.engine.CancelDonation(f.ctx, donor, donation.ID)
	require.NoError(t, err)

	_, err = f.engine.Respond(f.ctx, donor, request.ID, ActionAccept)
	requireKind(t, err, apperror.KindConflict)
	require.Equal(t, models.RequestPending, f.requestStatus(request.ID))
	require.Zero(t, f.points(donor))

	// rejecting is still allowed
	_, err = f.engine.Respond(f.ctx, donor, request.ID, ActionReject)
	require.NoError(t, err)
}

func TestConcurrentAcceptsClaimOnce(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	donation := f.donation(donor, "Bread")

	const bidders = 4
	requests := make([]*models.DonationRequest, bidders)
	for i := range requests {
		requests[i] = f.request(f.receiver("bidder"), donation.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, bidders)
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Respond(f.ctx, donor, requests[i].ID, ActionAccept)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		requireKind(t, err, apperror.KindConflict)
	}
	require.Equal(t, 1, winners)
	require.Equal(t, 10, f.points(donor))

	accepted := 0
	for _, r := range requests {
		status := f.requestStatus(r.ID)
		require.NotEqual(t, models.RequestPending, status)
		if status == models.RequestAccepted {
			accepted++
		}
	}
	require.Equal(t, 1, accepted)
	require.Equal(t, models.DonationClaimed, f.reload(donation.ID).Status)
}

func TestParseAction(t *testing.T) {
	action, err := ParseAction(" accept ")
	require.NoError(t, err)
	require.Equal(t, ActionAccept, action)

	_, err = ParseAction("")
	requireKind(t, err, apperror.KindValidation)
}
