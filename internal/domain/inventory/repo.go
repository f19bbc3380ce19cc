package inventory

import (
	"context"
)

// Repository defines persistence for mobile and accessory groups.
//
// Merge operations are single atomic statements: quantities are added and
// identifiers appended in the database, never read-modify-written.
// Writes that hit a unique index return an apperror with CodeDuplicate.
type Repository interface {
	FindMobile(ctx context.Context, lookup MobileLookup) (*Mobile, error)
	GetMobile(ctx context.Context, id string) (*Mobile, error)
	CreateMobile(ctx context.Context, m *Mobile) error
	MergeMobile(ctx context.Context, id string, delta MobileDelta) (*Mobile, error)
	UpdateMobileDetails(ctx context.Context, id string, details MobileDetails) (*Mobile, error)

	// IMEIInUse reports whether value is stored in slot by a group other than excludeID.
	IMEIInUse(ctx context.Context, slot IMEISlot, value, excludeID string) (bool, error)

	FindAccessory(ctx context.Context, dealerID, prefix string) (*Accessory, error)
	CreateAccessory(ctx context.Context, a *Accessory) error
	MergeAccessory(ctx context.Context, id string, delta AccessoryDelta) (*Accessory, error)

	ListMobiles(ctx context.Context, filter ListFilter) ([]*Mobile, error)
	ListAccessories(ctx context.Context, filter ListFilter) ([]*Accessory, error)
	LowStockMobiles(ctx context.Context, threshold int) ([]*Mobile, error)
	LowStockAccessories(ctx context.Context, threshold int) ([]*Accessory, error)

	FindMobileByUnitID(ctx context.Context, unitID string) (*Mobile, error)
	FindAccessoryByUnitID(ctx context.Context, unitID string) (*Accessory, error)
}
