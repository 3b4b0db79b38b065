package models

import "github.com/google/uuid"

type Receiver struct {
	Base
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User    *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone   string    `json:"phone"`
	Address string    `json:"address"`

	Requests []DonationRequest `gorm:"foreignKey:ReceiverID" json:"requests,omitempty"`
}
