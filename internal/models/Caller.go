package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
)

// Caller is the authenticated identity every matching operation receives.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

// Require fails with an auth error for an anonymous caller and a forbidden
// error for the wrong role.
func (c Caller) Require(role Role) error {
	if c.UserID == uuid.Nil {
		return apperror.Auth("Access denied. No token provided")
	}
	if c.Role != role {
		name := strings.ToUpper(string(role[:1])) + strings.ToLower(string(role[1:]))
		return apperror.Forbidden(fmt.Sprintf("Access denied. %s role required", name))
	}
	return nil
}

func (c Caller) Authenticated() error {
	if c.UserID == uuid.Nil {
		return apperror.Auth("Access denied. No token provided")
	}
	return nil
}
