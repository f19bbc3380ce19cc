package dto

import (
	"mobilebill/internal/domain/dealer"
)

// DealerRequest is the body of dealer create and update.
type DealerRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
	GST     *string `json:"gst"`
	Notes   *string `json:"notes"`
}

// ToEntity converts the request to a new dealer.
func (r *DealerRequest) ToEntity() *dealer.Dealer {
	d := &dealer.Dealer{}
	r.ApplyTo(d)
	return d
}

// ApplyTo copies the editable fields onto d.
func (r *DealerRequest) ApplyTo(d *dealer.Dealer) {
	d.Name = r.Name
	d.Phone = r.Phone
	d.Address = r.Address
	d.Email = r.Email
	d.GST = r.GST
	d.Notes = r.Notes
}
