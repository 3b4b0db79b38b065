package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationRequestSent     NotificationType = "REQUEST_SENT"
	NotificationRequestAccepted NotificationType = "REQUEST_ACCEPTED"
	NotificationRequestRejected NotificationType = "REQUEST_REJECTED"
)

// Notification is append-only. UserID is the recipient's User id, not a
// profile id.
type Notification struct {
	Base
	UserID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"userId"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	RequestID *uuid.UUID       `gorm:"type:uuid;index" json:"requestId"`
	// A withdrawn request is hard-deleted; its notifications keep the text.
	Request *DonationRequest `gorm:"foreignKey:RequestID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"request,omitempty"`
}
