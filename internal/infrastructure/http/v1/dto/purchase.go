package dto

import (
	"strings"
	"time"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/core/types"
	"mobilebill/internal/domain/codes"
	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/domain/purchase"
)

// DateLayout is the calendar date format accepted for purchase dates and filters.
const DateLayout = "2006-01-02"

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.NewValidation(field+" must be YYYY-MM-DD or RFC 3339").
		WithDetail("field", field).
		WithDetail("value", value)
}

// CreatePurchaseRequest is the body of POST /api/purchases.
type CreatePurchaseRequest struct {
	DealerID      string                `json:"dealerId"`
	PurchaseDate  string                `json:"purchaseDate"`
	InvoiceNumber string                `json:"invoiceNumber"`
	PaymentMode   string                `json:"paymentMode"`
	GSTEnabled    bool                  `json:"gstEnabled"`
	GSTPercentage types.Money           `json:"gstPercentage"`
	Notes         string                `json:"notes"`
	Items         []PurchaseItemRequest `json:"items"`
}

// PurchaseItemRequest is one line of a purchase.
type PurchaseItemRequest struct {
	Category      string      `json:"category"`
	ProductName   string      `json:"productName"`
	ProductID     string      `json:"productId"`
	Model         string      `json:"model"`
	Brand         string      `json:"brand"`
	Quantity      int         `json:"quantity"`
	PurchasePrice types.Money `json:"purchasePrice"`
	SellingPrice  types.Money `json:"sellingPrice"`
	TotalPrice    types.Money `json:"totalPrice"`
	Color         string      `json:"color"`
	RAM           string      `json:"ram"`
	Storage       string      `json:"storage"`
	IMEI1         string      `json:"imeiNumber1"`
	IMEI2         string      `json:"imeiNumber2"`
}

// ToEntity converts the request to a purchase. Status and totals are set by the service.
func (r *CreatePurchaseRequest) ToEntity() (*purchase.Purchase, error) {
	p := &purchase.Purchase{
		DealerID:      strings.TrimSpace(r.DealerID),
		InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
		PaymentMode:   strings.TrimSpace(r.PaymentMode),
		GSTEnabled:    r.GSTEnabled,
		GSTPercentage: r.GSTPercentage,
		Notes:         r.Notes,
	}
	if r.PurchaseDate != "" {
		d, err := ParseDate("purchaseDate", r.PurchaseDate)
		if err != nil {
			return nil, err
		}
		p.PurchaseDate = d
	}

	p.Items = make([]purchase.Item, 0, len(r.Items))
	for _, it := range r.Items {
		p.Items = append(p.Items, purchase.Item{
			Category:      codes.ParseCategory(it.Category),
			ProductName:   it.ProductName,
			ProductID:     strings.TrimSpace(it.ProductID),
			Model:         strings.TrimSpace(it.Model),
			Brand:         strings.TrimSpace(it.Brand),
			Quantity:      it.Quantity,
			PurchasePrice: it.PurchasePrice,
			SellingPrice:  it.SellingPrice,
			TotalPrice:    it.TotalPrice,
			Color:         strings.TrimSpace(it.Color),
			RAM:           strings.TrimSpace(it.RAM),
			Storage:       strings.TrimSpace(it.Storage),
			IMEI1:         strings.TrimSpace(it.IMEI1),
			IMEI2:         strings.TrimSpace(it.IMEI2),
		})
	}
	return p, nil
}

// PurchaseListQuery holds GET /api/purchases filters.
type PurchaseListQuery struct {
	DealerID string `form:"dealerId"`
	Status   string `form:"status"`
	From     string `form:"from"`
	To       string `form:"to"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// ToFilter parses dates and status. To covers the whole given day.
func (q *PurchaseListQuery) ToFilter() (purchase.ListFilter, error) {
	f := purchase.ListFilter{
		DealerID: strings.TrimSpace(q.DealerID),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Status != "" {
		s, err := purchase.ParseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = s
	}
	if q.From != "" {
		from, err := ParseDate("from", q.From)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := ParseDate("to", q.To)
		if err != nil {
			return f, err
		}
		if len(strings.TrimSpace(q.To)) == len(DateLayout) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &to
	}
	return f, nil
}

// UpdateStatusRequest is the body of PATCH /api/purchases/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ReceiveResponse is the body returned by the receive endpoint.
type ReceiveResponse struct {
	OK              bool                `json:"ok"`
	AlreadyReceived bool                `json:"alreadyReceived"`
	Skipped         bool                `json:"skipped,omitempty"`
	Purchase        *purchase.Purchase  `json:"purchase"`
	Lines           []*inventory.Result `json:"lines,omitempty"`
}

// NewReceiveResponse builds the response from a receive result.
func NewReceiveResponse(res *purchase.ReceiveResult) ReceiveResponse {
	return ReceiveResponse{
		OK:              true,
		AlreadyReceived: res.AlreadyReceived,
		Skipped:         res.Skipped,
		Purchase:        res.Purchase,
		Lines:           res.Lines,
	}
}
