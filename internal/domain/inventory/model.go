// Package inventory keeps the stock groups created and grown by received purchases.
//
// A mobile group is one row per (dealer, name, model) holding a running
// quantity and the unit identifiers minted for it. An accessory group is
// keyed by its identifier prefix, e.g. ACM-ACC-CHA.
package inventory

import (
	"time"

	"mobilebill/internal/core/types"
	"mobilebill/internal/domain/codes"
)

// Mobile is a stock group of phones.
type Mobile struct {
	ID              string      `db:"id" json:"id"`
	MobileName      string      `db:"mobile_name" json:"mobileName"`
	Brand           string      `db:"brand" json:"brand"`
	ModelNumber     string      `db:"model_number" json:"modelNumber"`
	IMEI1           *string     `db:"imei_number1" json:"imeiNumber1,omitempty"`
	IMEI2           *string     `db:"imei_number2" json:"imeiNumber2,omitempty"`
	DealerID        string      `db:"dealer_id" json:"dealerId"`
	DealerName      string      `db:"dealer_name" json:"dealerName"`
	PricePerProduct types.Money `db:"price_per_product" json:"pricePerProduct"`
	SellingPrice    types.Money `db:"selling_price" json:"sellingPrice"`
	TotalQuantity   int         `db:"total_quantity" json:"totalQuantity"`
	ProductIDs      []string    `db:"product_ids" json:"productIds"`
	RAM             string      `db:"ram" json:"ram"`
	Storage         string      `db:"storage" json:"storage"`
	Color           string      `db:"color" json:"color"`
	SimSlot         string      `db:"sim_slot" json:"simSlot"`
	Processor       string      `db:"processor" json:"processor"`
	DisplaySize     string      `db:"display_size" json:"displaySize"`
	Camera          string      `db:"camera" json:"camera"`
	Battery         string      `db:"battery" json:"battery"`
	OperatingSystem string      `db:"operating_system" json:"operatingSystem"`
	NetworkType     string      `db:"network_type" json:"networkType"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}

// HasProductID reports whether unitID is already recorded on the group.
func (m *Mobile) HasProductID(unitID string) bool {
	for _, p := range m.ProductIDs {
		if p == unitID {
			return true
		}
	}
	return false
}

// Accessory is a stock group of accessories sharing an identifier prefix.
type Accessory struct {
	ID           string      `db:"id" json:"id"`
	DealerID     string      `db:"dealer_id" json:"dealerId"`
	DealerName   string      `db:"dealer_name" json:"dealerName"`
	ProductID    string      `db:"product_id" json:"productId"`
	ProductIDs   []string    `db:"product_ids" json:"productIds"`
	ProductName  string      `db:"product_name" json:"productName"`
	Quantity     int         `db:"quantity" json:"quantity"`
	UnitPrice    types.Money `db:"unit_price" json:"unitPrice"`
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// Line is one purchase line as the upserter sees it.
type Line struct {
	LineNo        int
	DealerID      string
	DealerName    string
	Category      codes.Category
	ProductName   string
	ProductID     string
	Model         string
	Brand         string
	Quantity      int
	PurchasePrice types.Money
	SellingPrice  types.Money
	Color         string
	RAM           string
	Storage       string
	IMEI1         string
	IMEI2         string
}

// MobileLookup identifies a mobile group. Model is matched only when non-empty.
type MobileLookup struct {
	DealerID string
	Name     string
	Model    string
}

// MobileDelta is an atomic change applied to an existing mobile group.
type MobileDelta struct {
	Quantity   int
	ProductIDs []string

	// ExplicitID is recorded ahead of ProductIDs unless the group already holds it.
	ExplicitID string

	// Empty strings keep the stored value.
	Color   string
	RAM     string
	Storage string

	// Nil keeps the stored value; a stored value always wins over a new one.
	IMEI1 *string
	IMEI2 *string

	// ClearIMEIs stores the group without any IMEI, ignoring IMEI1/IMEI2.
	ClearIMEIs bool

	// Zero keeps the stored price.
	PricePerProduct types.Money
	SellingPrice    types.Money
}

// AccessoryDelta is an atomic change applied to an existing accessory group.
type AccessoryDelta struct {
	Quantity     int
	ProductIDs   []string
	UnitPrice    types.Money
	SellingPrice types.Money
}

// MobileDetails is a partial update of descriptive attributes. Nil fields are kept.
type MobileDetails struct {
	Brand           *string      `json:"brand"`
	RAM             *string      `json:"ram"`
	Storage         *string      `json:"storage"`
	Color           *string      `json:"color"`
	SimSlot         *string      `json:"simSlot"`
	Processor       *string      `json:"processor"`
	DisplaySize     *string      `json:"displaySize"`
	Camera          *string      `json:"camera"`
	Battery         *string      `json:"battery"`
	OperatingSystem *string      `json:"operatingSystem"`
	NetworkType     *string      `json:"networkType"`
	SellingPrice    *types.Money `json:"sellingPrice"`
}

// IsEmpty reports whether no field is set.
func (d MobileDetails) IsEmpty() bool {
	return d.Brand == nil && d.RAM == nil && d.Storage == nil && d.Color == nil &&
		d.SimSlot == nil && d.Processor == nil && d.DisplaySize == nil && d.Camera == nil &&
		d.Battery == nil && d.OperatingSystem == nil && d.NetworkType == nil && d.SellingPrice == nil
}

// ListFilter narrows inventory listings.
type ListFilter struct {
	Search   string
	DealerID string
	Limit    int
	Offset   int
}

// Kind tells which stock table a result refers to.
type Kind string

const (
	KindMobile    Kind = "mobile"
	KindAccessory Kind = "accessory"
	KindSkipped   Kind = "skipped"
)

// Result describes what Upserter.Apply did with one line.
type Result struct {
	LineNo   int          `json:"lineNo"`
	Kind     Kind         `json:"kind"`
	GroupID  string       `json:"groupId,omitempty"`
	Created  bool         `json:"created"`
	UnitIDs  []string     `json:"unitIds,omitempty"`
	Identity IdentityKind `json:"identity,omitempty"`
	Demoted  bool         `json:"imeiDemoted,omitempty"`
}

// LowStock lists groups at or below a quantity threshold.
type LowStock struct {
	Threshold   int          `json:"threshold"`
	Mobiles     []*Mobile    `json:"mobiles"`
	Accessories []*Accessory `json:"accessories"`
}

// UnitLookup is the group a minted unit identifier belongs to.
type UnitLookup struct {
	Kind      Kind       `json:"kind"`
	UnitID    string     `json:"productId"`
	Mobile    *Mobile    `json:"mobile,omitempty"`
	Accessory *Accessory `json:"accessory,omitempty"`
}
