package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

func TestCreateDonationDefaultsAndEvent(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")

	donation := f.donation(donor, "  Bread  ")

	require.Equal(t, "Bread", donation.Title)
	require.Equal(t, "kg", donation.QuantityUnit)
	require.Equal(t, models.DonationAvailable, donation.Status)
	require.Nil(t, donation.ReceiverID)
	require.Equal(t, []string{rabbitmq.DonationCreated}, f.events.types())
}

func TestCreateDonationValidation(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	bad := "next tuesday"

	_, err := f.engine.CreateDonation(f.ctx, donor, DonationInput{
		Title:          "ab",
		FoodType:       "x",
		Quantity:       0,
		PickupAddress:  "here",
		PickupDate:     "soon",
		ExpirationDate: &bad,
	})

	requireKind(t, err, apperror.KindValidation)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, map[string]string{
		"title":          "Title must be at least 3 characters",
		"foodType":       "Food type must be at least 2 characters",
		"quantity":       "Quantity must be a positive number",
		"pickupAddress":  "Please provide a valid pickup address",
		"pickupDate":     "Please provide a valid pickup date",
		"expirationDate": "Please provide a valid expiration date",
	}, appErr.Fields)
}

func TestCreateDonationRoleChecks(t *testing.T) {
	f := newFixture(t)
	receiver := f.receiver("bob")
	input := DonationInput{Title: "Bread", FoodType: "Bakery", Quantity: 1, PickupAddress: "12 Market Street", PickupDate: "2026-11-01"}

	_, err := f.engine.CreateDonation(f.ctx, receiver, input)
	requireKind(t, err, apperror.KindForbidden)
	require.EqualError(t, err, "Access denied. Donor role required")

	_, err = f.engine.CreateDonation(f.ctx, models.Caller{}, input)
	requireKind(t, err, apperror.KindAuth)
}

func TestGetDonationVisibility(t *testing.T) {
	f := newFixture(t)
	owner := f.donor("alice")
	other := f.donor("carol")
	receiver := f.receiver("bob")
	donation := f.donation(owner, "Bread")

	got, err := f.engine.GetDonation(f.ctx, owner, donation.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Donor.User.Name)

	_, err = f.engine.GetDonation(f.ctx, receiver, donation.ID)
	require.NoError(t, err)

	_, err = f.engine.GetDonation(f.ctx, other, donation.ID)
	requireKind(t, err, apperror.KindForbidden)

	_, err = f.engine.GetDonation(f.ctx, receiver, uuid.New())
	requireKind(t, err, apperror.KindNotFound)
	require.EqualError(t, err, "Donation not found")
}

func TestListDonationsFilters(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	bread := f.donation(donor, "Bread")
	f.donation(donor, "Rolls")
	_, err := f.engine.CancelDonation(f.ctx, donor, bread.ID)
	require.NoError(t, err)

	all, err := f.engine.ListDonations(f.ctx, receiver, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	available, err := f.engine.ListDonations(f.ctx, receiver, ListFilter{Status: "available"})
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, "Rolls", available[0].Title)

	none, err := f.engine.ListDonations(f.ctx, receiver, ListFilter{FoodType: "Dairy"})
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = f.engine.ListDonations(f.ctx, receiver, ListFilter{Status: "EATEN"})
	requireKind(t, err, apperror.KindValidation)

	feed, err := f.engine.ListAvailable(f.ctx, receiver)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	_, err = f.engine.ListAvailable(f.ctx, donor)
	requireKind(t, err, apperror.KindForbidden)
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	other := f.donor("carol")
	receiver := f.receiver("bob")
	bread := f.donation(donor, "Bread")
	f.donation(other, "Soup")

	mine, err := f.engine.ListMine(f.ctx, donor)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, bread.ID, mine[0].ID)

	claimed, err := f.engine.ListMine(f.ctx, receiver)
	require.NoError(t, err)
	require.Empty(t, claimed)

	request := f.request(receiver, bread.ID)
	_, err = f.engine.Respond(f.ctx, donor, request.ID, ActionAccept)
	require.NoError(t, err)

	claimed, err = f.engine.ListMine(f.ctx, receiver)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, bread.ID, claimed[0].ID)
}

func TestCancelDonationLeavesPendingRequests(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	donation := f.donation(donor, "Bread")
	request := f.request(receiver, donation.ID)

	cancelled, err := f.engine.CancelDonation(f.ctx, donor, donation.ID)
	require.NoError(t, err)
	require.Equal(t, models.DonationCancelled, cancelled.Status)
	require.Equal(t, models.RequestPending, f.requestStatus(request.ID))

	_, err = f.engine.CancelDonation(f.ctx, donor, donation.ID)
	requireKind(t, err, apperror.KindConflict)

	_, err = f.engine.CreateRequest(f.ctx, f.receiver("dan"), donation.ID, nil)
	requireKind(t, err, apperror.KindConflict)
	require.EqualError(t, err, "Cannot request this donation as it is cancelled")
}

func TestCancelDonationOwnership(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	donation := f.donation(donor, "Bread")

	_, err := f.engine.CancelDonation(f.ctx, f.donor("carol"), donation.ID)
	requireKind(t, err, apperror.KindForbidden)
	require.EqualError(t, err, "You do not have permission to cancel this donation")

	_, err = f.engine.CancelDonation(f.ctx, donor, uuid.New())
	requireKind(t, err, apperror.KindNotFound)

	require.Equal(t, models.DonationAvailable, f.reload(donation.ID).Status)
}

func TestCompleteDonation(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	donation := f.donation(donor, "Bread")

	_, err := f.engine.CompleteDonation(f.ctx, donor, donation.ID)
	requireKind(t, err, apperror.KindConflict)
	require.EqualError(t, err, "Donation cannot be completed because it is available")

	request := f.request(receiver, donation.ID)
	_, err = f.engine.Respond(f.ctx, donor, request.ID, ActionAccept)
	require.NoError(t, err)

	completed, err := f.engine.CompleteDonation(f.ctx, donor, donation.ID)
	require.NoError(t, err)
	require.Equal(t, models.DonationCompleted, completed.Status)
	require.NotNil(t, completed.ReceiverID)
	require.Equal(t, f.receiverID(receiver), *completed.ReceiverID)
	require.Equal(t, rabbitmq.DonationCompleted, f.events.last().Type)

	_, err = f.engine.CancelDonation(f.ctx, donor, donation.ID)
	requireKind(t, err, apperror.KindConflict)
}

func TestExpireDonations(t *testing.T) {
	f := newFixture(t)
	donor := f.donor("alice")
	receiver := f.receiver("bob")
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	create := func(title, expires string) *models.Donation {
		in := DonationInput{Title: title, FoodType: "Dairy", Quantity: 2, PickupAddress: "12 Market Street", PickupDate: "2026-10-18"}
		if expires != "" {
			in.ExpirationDate = &expires
		}
		d, err := f.engine.CreateDonation(f.ctx, donor, in)
		require.NoError(t, err)
		return d
	}
	stale := create("Old milk", "2026-10-18T00:00:00Z")
	fresh := create("New milk", "2026-10-25T00:00:00Z")
	open := create("Cheese", "")
	claimed := create("Yoghurt", "2026-10-17T00:00:00Z")
	request := f.request(receiver, claimed.ID)
	_, err := f.engine.Respond(f.ctx, donor, request.ID, ActionAccept)
	require.NoError(t, err)

	count, err := f.engine.ExpireDonations(f.ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.Equal(t, models.DonationCancelled, f.reload(stale.ID).Status)
	require.Equal(t, models.DonationAvailable, f.reload(fresh.ID).Status)
	require.Equal(t, models.DonationAvailable, f.reload(open.ID).Status)
	require.Equal(t, models.DonationClaimed, f.reload(claimed.ID).Status)
	require.Equal(t, rabbitmq.DonationCancelled, f.events.last().Type)

	count, err = f.engine.ExpireDonations(f.ctx, now)
	require.NoError(t, err)
	require.Zero(t, count)
}
