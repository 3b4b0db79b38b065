package models

import "strings"

type Role string

const (
	RoleDonor    Role = "DONOR"
	RoleReceiver Role = "RECEIVER"
)

// ParseRole accepts either case and reports false for anything that is not a
// donor or receiver.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleDonor:
		return RoleDonor, true
	case RoleReceiver:
		return RoleReceiver, true
	default:
		return "", false
	}
}

type User struct {
	Base
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"type:varchar(16);not null"`

	// Exactly one of these is set, matching Role.
	Donor    *Donor    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"donor,omitempty"`
	Receiver *Receiver `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"receiver,omitempty"`
}
