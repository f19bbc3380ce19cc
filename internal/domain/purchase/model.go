// Package purchase provides purchase documents and their receive flow.
package purchase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/core/types"
	"mobilebill/internal/domain/codes"
	"mobilebill/internal/domain/inventory"
)

// Status of a purchase. The only transition is Pending -> Received.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusReceived Status = "Received"
)

// ParseStatus accepts any letter case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "received":
		return StatusReceived, nil
	}
	return "", apperror.NewValidation("status must be Pending or Received").
		WithDetail("field", "status").
		WithDetail("value", s)
}

// Purchase is a purchase document from a dealer.
type Purchase struct {
	ID            string      `db:"id" json:"id"`
	DealerID      string      `db:"dealer_id" json:"dealerId"`
	PurchaseDate  time.Time   `db:"purchase_date" json:"purchaseDate"`
	InvoiceNumber string      `db:"invoice_number" json:"invoiceNumber"`
	PaymentMode   string      `db:"payment_mode" json:"paymentMode"`
	GSTEnabled    bool        `db:"gst_enabled" json:"gstEnabled"`
	GSTPercentage types.Money `db:"gst_percentage" json:"gstPercentage"`
	TotalAmount   types.Money `db:"total_amount" json:"totalAmount"`
	GSTAmount     types.Money `db:"gst_amount" json:"gstAmount"`
	GrandTotal    types.Money `db:"grand_total" json:"grandTotal"`
	Status        Status      `db:"status" json:"status"`
	ReceivedAt    *time.Time  `db:"received_at" json:"receivedAt,omitempty"`
	Notes         string      `db:"notes" json:"notes"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`

	Items []Item `db:"-" json:"items"`
}

// Item is one purchase line. Items keep their order through LineNo.
type Item struct {
	LineNo        int            `db:"line_no" json:"lineNo"`
	Category      codes.Category `db:"category" json:"category"`
	ProductName   string         `db:"product_name" json:"productName"`
	ProductID     string         `db:"product_id" json:"productId,omitempty"`
	Model         string         `db:"model" json:"model,omitempty"`
	Brand         string         `db:"brand" json:"brand,omitempty"`
	Quantity      int            `db:"quantity" json:"quantity"`
	PurchasePrice types.Money    `db:"purchase_price" json:"purchasePrice"`
	SellingPrice  types.Money    `db:"selling_price" json:"sellingPrice"`
	TotalPrice    types.Money    `db:"total_price" json:"totalPrice"`
	Color         string         `db:"color" json:"color,omitempty"`
	RAM           string         `db:"ram" json:"ram,omitempty"`
	Storage       string         `db:"storage" json:"storage,omitempty"`
	IMEI1         string         `db:"imei_number1" json:"imeiNumber1,omitempty"`
	IMEI2         string         `db:"imei_number2" json:"imeiNumber2,omitempty"`
}

// Line converts the item for the inventory upserter.
func (it Item) Line(dealerID, dealerName string) inventory.Line {
	return inventory.Line{
		LineNo:        it.LineNo,
		DealerID:      dealerID,
		DealerName:    dealerName,
		Category:      it.Category,
		ProductName:   it.ProductName,
		ProductID:     it.ProductID,
		Model:         it.Model,
		Brand:         it.Brand,
		Quantity:      it.Quantity,
		PurchasePrice: it.PurchasePrice,
		SellingPrice:  it.SellingPrice,
		Color:         it.Color,
		RAM:           it.RAM,
		Storage:       it.Storage,
		IMEI1:         it.IMEI1,
		IMEI2:         it.IMEI2,
	}
}

// Validate checks the fields a purchase must have before it is stored.
func (p *Purchase) Validate(_ context.Context) error {
	if strings.TrimSpace(p.DealerID) == "" {
		return apperror.NewValidation("dealerId is required").WithDetail("field", "dealerId")
	}
	if p.PurchaseDate.IsZero() {
		return apperror.NewValidation("purchaseDate is required").WithDetail("field", "purchaseDate")
	}
	if len(p.Items) == 0 {
		return apperror.NewValidation("items must not be empty").WithDetail("field", "items")
	}
	if p.GSTPercentage.IsNegative() {
		return apperror.NewValidation("gstPercentage must not be negative").WithDetail("field", "gstPercentage")
	}
	for i, it := range p.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.ProductName) == "" {
			return apperror.NewValidation("productName is required").WithDetail("field", field+".productName")
		}
		if it.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").WithDetail("field", field+".quantity")
		}
		if it.PurchasePrice.IsNegative() || it.SellingPrice.IsNegative() {
			return apperror.NewValidation("prices must not be negative").WithDetail("field", field)
		}
	}
	return nil
}

// ComputeTotals numbers the items and fills line totals, GST and grand total.
// A line total given by the client is kept.
func (p *Purchase) ComputeTotals() {
	totals := make([]types.Money, 0, len(p.Items))
	for i := range p.Items {
		it := &p.Items[i]
		it.LineNo = i + 1
		it.ProductName = strings.TrimSpace(it.ProductName)
		if it.TotalPrice.IsZero() {
			it.TotalPrice = types.LineTotal(it.PurchasePrice, it.Quantity)
		}
		totals = append(totals, it.TotalPrice)
	}
	p.TotalAmount = types.Sum(totals...)
	p.GSTAmount = types.Zero()
	if p.GSTEnabled {
		p.GSTAmount = types.Percent(p.TotalAmount, p.GSTPercentage)
	}
	p.GrandTotal = p.TotalAmount.Add(p.GSTAmount)
}

// IsReceived reports whether receive already ran at least once.
func (p *Purchase) IsReceived() bool {
	return p.Status == StatusReceived
}

// ListFilter narrows purchase listings. From and To bound purchase_date inclusively.
type ListFilter struct {
	DealerID string
	Status   Status
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ReceiveResult is returned by Service.Receive.
type ReceiveResult struct {
	Purchase        *Purchase           `json:"purchase"`
	AlreadyReceived bool                `json:"alreadyReceived"`
	Skipped         bool                `json:"skipped,omitempty"`
	Lines           []*inventory.Result `json:"lines,omitempty"`
}
