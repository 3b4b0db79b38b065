package models

import "github.com/google/uuid"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// DonationRequest is a receiver's bid for one donation. At most one PENDING
// row may exist per (DonationID, ReceiverID); see the uniq_pending_request
// index created at migration time.
type DonationRequest struct {
	Base
	DonationID uuid.UUID     `gorm:"type:uuid;index;not null" json:"donationId"`
	Donation   *Donation     `gorm:"foreignKey:DonationID" json:"donation,omitempty"`
	ReceiverID uuid.UUID     `gorm:"type:uuid;index;not null" json:"receiverId"`
	Receiver   *Receiver     `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Message    *string       `json:"message"`
	Status     RequestStatus `gorm:"type:varchar(16);index;not null;default:PENDING" json:"status"`
}
