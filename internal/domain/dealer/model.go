// Package dealer provides the Dealer catalog: suppliers purchases are received from.
package dealer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"mobilebill/internal/core/apperror"
)

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
	gstRE   = regexp.MustCompile(`^[0-9A-Z]{15}$`)
)

// UnknownName is the dealer name used when a purchase references a missing dealer.
const UnknownName = "Unknown"

// Dealer is a supplier.
type Dealer struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	GST       *string   `db:"gst" json:"gst,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Normalize trims text fields and turns empty optionals into nil.
func (d *Dealer) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = trimOptional(d.Address)
	d.Email = trimOptional(d.Email)
	d.Notes = trimOptional(d.Notes)
	if g := trimOptional(d.GST); g != nil {
		upper := strings.ToUpper(*g)
		d.GST = &upper
	} else {
		d.GST = nil
	}
}

// Validate checks required fields and formats.
func (d *Dealer) Validate(_ context.Context) error {
	if d.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if d.Phone == "" {
		return apperror.NewValidation("phone is required").WithDetail("field", "phone")
	}
	if !phoneRE.MatchString(d.Phone) {
		return apperror.NewValidation("invalid phone format").WithDetail("field", "phone")
	}
	if d.Email != nil && !emailRE.MatchString(*d.Email) {
		return apperror.NewValidation("invalid email format").WithDetail("field", "email")
	}
	if d.GST != nil && !gstRE.MatchString(*d.GST) {
		return apperror.NewValidation("GST number must be 15 characters").WithDetail("field", "gst")
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
