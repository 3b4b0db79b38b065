package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

func TestCreateRequestNotifiesDonor(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	donation := f.donation(donor, "Bread")
	note := "I can pick up at noon"

	request, err := f.engine.CreateRequest(f.ctx, receiver, donation.ID, &note)
	require.NoError(t, err)
	require.Equal(t, models.RequestPending, request.Status)
	require.Equal(t, note, *request.Message)

	inbox, err := f.engine.Notifications(f.ctx, donor)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, models.NotificationRequestSent, inbox[0].Type)
	require.Equal(t, "New Donation Request", inbox[0].Title)
	require.Equal(t, "bob has requested your donation: Bread", inbox[0].Message)
	require.NotNil(t, inbox[0].RequestID)
	require.Equal(t, request.ID, *inbox[0].RequestID)

	event := f.events.last()
	require.Equal(t, rabbitmq.RequestCreated, event.Type)
	require.Equal(t, donation.ID, event.DonationID)
}

func TestCreateRequestDuplicate(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	donation := f.donation(donor, "Bread")
	f.request(receiver, donation.ID)

	_, err := f.engine.CreateRequest(f.ctx, receiver, donation.ID, nil)
	requireKind(t, err, apperror.KindConflict)
	require.EqualError(t, err, "You have already requested this donation")

	notifications, err := f.engine.Notifications(f.ctx, donor)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
}

func TestCreateRequestChecks(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	donation := f.donation(donor, "Bread")

	_, err := f.engine.CreateRequest(f.ctx, donor, donation.ID, nil)
	requireKind(t, err, apperror.KindForbidden)
	require.EqualError(t, err, "Access denied. Receiver role required")

	_, err = f.engine.CreateRequest(f.ctx, receiver, uuid.New(), nil)
	requireKind(t, err, apperror.KindNotFound)
}

func TestWithdrawThenRequestAgain(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	donation := f.donation(donor, "Bread")
	first := f.request(receiver, donation.ID)

	require.NoError(t, f.engine.WithdrawRequest(f.ctx, receiver, donation.ID))
	_, err := f.repo.Requests().FindByID(f.ctx, first.ID)
	requireKind(t, err, apperror.KindNotFound)
	require.Equal(t, rabbitmq.RequestWithdrawn, f.events.last().Type)

	err = f.engine.WithdrawRequest(f.ctx, receiver, donation.ID)
	requireKind(t, err, apperror.KindNotFound)
	require.EqualError(t, err, "Request not found or already processed")

	second := f.request(receiver, donation.ID)
	require.NotEqual(t, first.ID, second.ID)

	state, err := f.engine.GetRequestStatus(f.ctx, receiver, donation.ID)
	require.NoError(t, err)
	require.True(t, state.HasRequest)
	require.Equal(t, models.RequestPending, *state.Status)
	require.Equal(t, second.ID, state.Request.ID)
}

func TestWithdrawResolvedRequestFails(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	donation := f.donation(donor, "Bread")
	request := f.request(receiver, donation.ID)
	_, err := f.engine.Respond(f.ctx, donor, request.ID, ActionReject)
	require.NoError(t, err)

	err = f.engine.WithdrawRequest(f.ctx, receiver, donation.ID)
	requireKind(t, err, apperror.KindNotFound)
	require.Equal(t, models.RequestRejected, f.requestStatus(request.ID))

	err = f.engine.WithdrawRequest(f.ctx, receiver, uuid.New())
	requireKind(t, err, apperror.KindNotFound)
}

func TestGetRequestStatusWithoutRequest(t *testing.T) {
	f := newFixture(t)
	donation := f.donation(f.donor("alice"), "Bread")

	state, err := f.engine.GetRequestStatus(f.ctx, f.receiver("bob"), donation.ID)
	require.NoError(t, err)
	require.False(t, state.HasRequest)
	require.Nil(t, state.Status)
	require.Nil(t, state.Request)
}

func TestInboxAndOutbox(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	bob := f.receiver("bob")
	dan := f.receiver("dan")
	bread := f.donation(donor, "Bread")
	soup := f.donation(donor, "Soup")
	f.request(bob, bread.ID)
	f.request(bob, soup.ID)
	danBread := f.request(dan, bread.ID)

	inbox, err := f.engine.Inbox(f.ctx, donor)
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	for _, r := range inbox {
		require.NotNil(t, r.Donation)
		require.NotNil(t, r.Receiver)
		require.NotNil(t, r.Receiver.User)
	}

	_, err = f.engine.Respond(f.ctx, donor, danBread.ID, ActionAccept)
	require.NoError(t, err)

	accepted, err := f.engine.AcceptedRequests(f.ctx, donor)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	require.Equal(t, danBread.ID, accepted[0].ID)

	outbox, err := f.engine.Outbox(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, outbox, 2)
	for _, r := range outbox {
		require.Equal(t, "alice", r.Donation.Donor.User.Name)
	}

	_, err = f.engine.Inbox(f.ctx, bob)
	requireKind(t, err, apperror.KindForbidden)
	_, err = f.engine.Outbox(f.ctx, donor)
	requireKind(t, err, apperror.KindForbidden)
}
