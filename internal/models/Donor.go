package models

import "github.com/google/uuid"

type Donor struct {
	Base
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User    *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone   string    `json:"phone"`
	Address string    `json:"address"`
	Points  int       `gorm:"not null;default:0" json:"points"`

	Donations []Donation `gorm:"foreignKey:DonorID" json:"donations,omitempty"`
}
