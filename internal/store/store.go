package store

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the unit of work handed to the matching engine. Every
// accessor returned from a Repository obtained inside Transaction runs on the
// same database transaction.
type Repository interface {
	Users() UserRepository
	Donations() DonationRepository
	Requests() RequestRepository
	Notifications() NotificationRepository
	Transaction(ctx context.Context, fn func(tx Repository) error) error
	Ping(ctx context.Context) error
}

// Store is the GORM-backed Repository.
type Store struct {
	db            *gorm.DB
	users         *UserStore
	donations     *DonationStore
	requests      *RequestStore
	notifications *NotificationStore
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		users:         &UserStore{db: db},
		donations:     &DonationStore{db: db},
		requests:      &RequestStore{db: db},
		notifications: &NotificationStore{db: db},
	}
}

func (s *Store) Users() UserRepository                 { return s.users }
func (s *Store) Donations() DonationRepository         { return s.donations }
func (s *Store) Requests() RequestRepository           { return s.requests }
func (s *Store) Notifications() NotificationRepository { return s.notifications }

// Transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
