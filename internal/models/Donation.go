package models

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	DonationAvailable DonationStatus = "AVAILABLE"
	DonationClaimed   DonationStatus = "CLAIMED"
	DonationCompleted DonationStatus = "COMPLETED"
	DonationCancelled DonationStatus = "CANCELLED"
)

// CanTransitionTo reports whether next is a legal successor of s.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	switch s {
	case DonationAvailable:
		return next == DonationClaimed || next == DonationCancelled
	case DonationClaimed:
		return next == DonationCompleted
	default:
		return false
	}
}

// Donation is a listed quantity of food. ReceiverID is set iff Status is
// CLAIMED or COMPLETED.
type Donation struct {
	Base
	Title          string         `gorm:"not null" json:"title"`
	Description    *string        `json:"description"`
	FoodType       string         `gorm:"index;not null" json:"foodType"`
	Quantity       float64        `gorm:"not null" json:"quantity"`
	QuantityUnit   string         `gorm:"not null" json:"quantityUnit"`
	PickupAddress  string         `gorm:"not null" json:"pickupAddress"`
	PickupDate     time.Time      `gorm:"not null" json:"pickupDate"`
	ExpirationDate *time.Time     `json:"expirationDate"`
	Status         DonationStatus `gorm:"type:varchar(16);index;not null;default:AVAILABLE" json:"status"`

	DonorID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"donorId"`
	Donor      *Donor     `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	ReceiverID *uuid.UUID `gorm:"type:uuid;index" json:"receiverId"`
	Receiver   *Receiver  `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}
