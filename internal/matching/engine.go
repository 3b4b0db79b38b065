// Package matching runs the donation lifecycle: listing and cancelling
// donations, receivers requesting them, and donors accepting or rejecting
// requests. Every mutation that touches more than one row runs in a single
// store transaction with the donation row locked.
package matching

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/HuNTer8272/surplus2share-project/internal/store"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

const (
	defaultRewardPoints = 10
	publishTimeout      = 5 * time.Second
)

type Options struct {
	// RewardPoints is credited to a donor each time they accept a request.
	RewardPoints        int
	DefaultQuantityUnit string
	Publisher           rabbitmq.Publisher
	Now                 func() time.Time
}

type Engine struct {
	repo        store.Repository
	reward      int
	defaultUnit string
	publisher   rabbitmq.Publisher
	now         func() time.Time
	validate    *validator.Validate
}

func New(repo store.Repository, opts Options) *Engine {
	if opts.RewardPoints <= 0 {
		opts.RewardPoints = defaultRewardPoints
	}
	if opts.DefaultQuantityUnit == "" {
		opts.DefaultQuantityUnit = "kg"
	}
	if opts.Publisher == nil {
		opts.Publisher = &rabbitmq.EventProducerFallback{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		repo:        repo,
		reward:      opts.RewardPoints,
		defaultUnit: opts.DefaultQuantityUnit,
		publisher:   opts.Publisher,
		now:         opts.Now,
		validate:    newValidator(),
	}
}

// publish runs after commit. A broker failure never undoes a committed
// decision, so it is only logged.
func (e *Engine) publish(ctx context.Context, event rabbitmq.DonationEvent) {
	event.Timestamp = e.now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.publisher.PublishDonationEvent(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":       event.Type,
			"donation_id": event.DonationID,
		}).Warn("failed to publish donation event")
	}
}
