package matching

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
	"github.com/HuNTer8272/surplus2share-project/internal/store"
	"github.com/HuNTer8272/surplus2share-project/internal/storetest"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []rabbitmq.DonationEvent
}

func (p *recordingPublisher) PublishDonationEvent(_ context.Context, event rabbitmq.DonationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) last() rabbitmq.DonationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	repo   *store.Store
	engine *Engine
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := store.New(storetest.Open(t))
	events := &recordingPublisher{}
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		repo:   repo,
		engine: New(repo, Options{RewardPoints: 10, Publisher: events}),
		events: events,
	}
}

func (f *fixture) user(name string, role models.Role) *models.User {
	f.t.Helper()
	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(f.t, f.repo.Users().Create(f.ctx, user))
	return user
}

func (f *fixture) donor(name string) models.Caller {
	f.t.Helper()
	user := f.user(name, models.RoleDonor)
	require.NoError(f.t, f.repo.Users().CreateDonor(f.ctx, &models.Donor{UserID: user.ID}))
	return models.Caller{UserID: user.ID, Role: models.RoleDonor}
}

func (f *fixture) receiver(name string) models.Caller {
	f.t.Helper()
	user := f.user(name, models.RoleReceiver)
	require.NoError(f.t, f.repo.Users().CreateReceiver(f.ctx, &models.Receiver{UserID: user.ID}))
	return models.Caller{UserID: user.ID, Role: models.RoleReceiver}
}

func (f *fixture) donation(donor models.Caller, title string) *models.Donation {
	f.t.Helper()
	donation, err := f.engine.CreateDonation(f.ctx, donor, DonationInput{
		Title:         title,
		FoodType:      "Bakery",
		Quantity:      5,
		PickupAddress: "12 Market Street",
		PickupDate:    "2026-11-01T10:00:00Z",
	})
	require.NoError(f.t, err)
	return donation
}

func (f *fixture) request(receiver models.Caller, donationID uuid.UUID) *models.DonationRequest {
	f.t.Helper()
	request, err := f.engine.CreateRequest(f.ctx, receiver, donationID, nil)
	require.NoError(f.t, err)
	return request
}

func (f *fixture) points(donor models.Caller) int {
	f.t.Helper()
	profile, err := f.repo.Users().DonorByUserID(f.ctx, donor.UserID)
	require.NoError(f.t, err)
	return profile.Points
}

func (f *fixture) receiverID(receiver models.Caller) uuid.UUID {
	f.t.Helper()
	profile, err := f.repo.Users().ReceiverByUserID(f.ctx, receiver.UserID)
	require.NoError(f.t, err)
	return profile.ID
}

func (f *fixture) reload(id uuid.UUID) *models.Donation {
	f.t.Helper()
	donation, err := f.repo.Donations().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return donation
}

func (f *fixture) requestStatus(id uuid.UUID) models.RequestStatus {
	f.t.Helper()
	request, err := f.repo.Requests().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return request.Status
}

func requireKind(t *testing.T, err error, kind apperror.Kind, msgAndArgs ...interface{}) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	require.Equal(t, kind, apperror.KindOf(err), "got %v", err)
}
