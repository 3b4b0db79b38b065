// Package accounts registers users, checks their credentials and maintains
// the donor and receiver profiles attached to them.
package accounts

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
	"github.com/HuNTer8272/surplus2share-project/internal/store"
)

type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"min=6"`
	Name     string  `json:"name" validate:"min=2"`
	Role     string  `json:"role" validate:"required"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

var fieldMessages = map[string]string{
	"email":    "Invalid email address",
	"password": "Password must be at least 6 characters",
	"name":     "Name must be at least 2 characters",
	"role":     "Role must be either DONOR or RECEIVER",
}

type Service struct {
	repo     store.Repository
	validate *validator.Validate
	cost     int
}

func New(repo store.Repository) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &Service{repo: repo, validate: v, cost: bcrypt.DefaultCost}
}

// Register creates the user and its role profile in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	fields := s.check(in)
	role, ok := models.ParseRole(in.Role)
	if !ok {
		fields["role"] = fieldMessages["role"]
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Validation failed", fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperror.Internal("could not hash password", err)
	}

	user := &models.User{Name: in.Name, Email: in.Email, Password: string(hash), Role: role}
	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		phone, address := deref(in.Phone), deref(in.Address)
		if role == models.RoleDonor {
			user.Donor = &models.Donor{UserID: user.ID, Phone: phone, Address: address}
			return tx.Users().CreateDonor(ctx, user.Donor)
		}
		user.Receiver = &models.Receiver{UserID: user.ID, Phone: phone, Address: address}
		return tx.Users().CreateReceiver(ctx, user.Receiver)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("user registered")
	return user, nil
}

// Login returns the user matching the credentials. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if fields := s.check(in); len(fields) > 0 {
		if _, ok := fields["password"]; ok {
			fields["password"] = "Password is required"
		}
		return nil, apperror.Validation("Validation failed", fields)
	}

	user, err := s.repo.Users().FindByEmail(ctx, in.Email)
	if apperror.KindOf(err) == apperror.KindNotFound {
		return nil, apperror.Auth("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, apperror.Auth("Invalid credentials")
	}
	return user, nil
}

// Me returns the caller with the profile that matches their role.
func (s *Service) Me(ctx context.Context, caller models.Caller) (*models.User, error) {
	if err := caller.Authenticated(); err != nil {
		return nil, err
	}
	return s.repo.Users().FindByID(ctx, caller.UserID)
}

func (s *Service) DonorProfile(ctx context.Context, caller models.Caller) (*models.Donor, error) {
	if err := caller.Require(models.RoleDonor); err != nil {
		return nil, err
	}
	return s.repo.Users().DonorByUserID(ctx, caller.UserID)
}

func (s *Service) ReceiverProfile(ctx context.Context, caller models.Caller) (*models.Receiver, error) {
	if err := caller.Require(models.RoleReceiver); err != nil {
		return nil, err
	}
	return s.repo.Users().ReceiverByUserID(ctx, caller.UserID)
}

func (s *Service) UpdateDonorProfile(ctx context.Context, caller models.Caller, in ProfileUpdate) (*models.Donor, error) {
	if err := caller.Require(models.RoleDonor); err != nil {
		return nil, err
	}
	if err := s.checkUpdate(&in); err != nil {
		return nil, err
	}
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		donor, err := tx.Users().DonorByUserID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if err := tx.Users().UpdateName(ctx, caller.UserID, *in.Name); err != nil {
				return err
			}
		}
		return tx.Users().UpdateDonorContact(ctx, donor.ID, store.ContactUpdate{Phone: in.Phone, Address: in.Address})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Users().DonorByUserID(ctx, caller.UserID)
}

func (s *Service) UpdateReceiverProfile(ctx context.Context, caller models.Caller, in ProfileUpdate) (*models.Receiver, error) {
	if err := caller.Require(models.RoleReceiver); err != nil {
		return nil, err
	}
	if err := s.checkUpdate(&in); err != nil {
		return nil, err
	}
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		receiver, err := tx.Users().ReceiverByUserID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if err := tx.Users().UpdateName(ctx, caller.UserID, *in.Name); err != nil {
				return err
			}
		}
		return tx.Users().UpdateReceiverContact(ctx, receiver.ID, store.ContactUpdate{Phone: in.Phone, Address: in.Address})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Users().ReceiverByUserID(ctx, caller.UserID)
}

func (s *Service) checkUpdate(in *ProfileUpdate) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if fields := s.check(*in); len(fields) > 0 {
		return apperror.Validation("Validation failed", fields)
	}
	return nil
}

// check runs the struct rules and returns a message per failing field.
func (s *Service) check(in interface{}) map[string]string {
	fields := map[string]string{}
	err := s.validate.Struct(in)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessages[fe.Field()]
	}
	return fields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
