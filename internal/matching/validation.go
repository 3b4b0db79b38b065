package matching

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
)

// DonationInput is the body of a create-donation call. Dates are strings so
// that unparsable values surface as field errors rather than decode errors.
type DonationInput struct {
	Title          string  `json:"title" validate:"min=3"`
	Description    *string `json:"description"`
	FoodType       string  `json:"foodType" validate:"min=2"`
	Quantity       float64 `json:"quantity" validate:"gt=0"`
	QuantityUnit   string  `json:"quantityUnit"`
	PickupAddress  string  `json:"pickupAddress" validate:"min=5"`
	PickupDate     string  `json:"pickupDate" validate:"required"`
	ExpirationDate *string `json:"expirationDate"`
}

var fieldMessages = map[string]string{
	"title":         "Title must be at least 3 characters",
	"foodType":      "Food type must be at least 2 characters",
	"quantity":      "Quantity must be a positive number",
	"pickupAddress": "Please provide a valid pickup address",
	"pickupDate":    "Please provide a valid pickup date",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type parsedDonation struct {
	input      DonationInput
	pickup     time.Time
	expiration *time.Time
}

// validateDonation trims the input, checks field rules and parses the dates.
// All failures are reported together.
func (e *Engine) validateDonation(in DonationInput) (parsedDonation, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.FoodType = strings.TrimSpace(in.FoodType)
	in.PickupAddress = strings.TrimSpace(in.PickupAddress)
	in.QuantityUnit = strings.TrimSpace(in.QuantityUnit)
	if in.QuantityUnit == "" {
		in.QuantityUnit = e.defaultUnit
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		in.Description = nil
	}

	fields := map[string]string{}
	if err := e.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return parsedDonation{}, apperror.Internal("validating donation", err)
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessages[fe.Field()]
		}
	}

	out := parsedDonation{input: in}
	if _, failed := fields["pickupDate"]; !failed {
		pickup, ok := parseDate(in.PickupDate)
		if !ok {
			fields["pickupDate"] = fieldMessages["pickupDate"]
		}
		out.pickup = pickup
	}
	if in.ExpirationDate != nil {
		expiration, ok := parseDate(*in.ExpirationDate)
		if !ok {
			fields["expirationDate"] = "Please provide a valid expiration date"
		} else {
			out.expiration = &expiration
		}
	}

	if len(fields) > 0 {
		return parsedDonation{}, apperror.Validation("Validation failed", fields)
	}
	return out, nil
}
