package inventory

import (
	"context"
	"strings"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/core/numerator"
	"mobilebill/pkg/logger"
)

// Service serves stock reads and the descriptive-attribute edits of mobiles.
type Service struct {
	repo              Repository
	allocator         numerator.Allocator
	lowStockThreshold int
}

// NewService creates an inventory Service. threshold is the default low-stock limit.
func NewService(repo Repository, allocator numerator.Allocator, threshold int) *Service {
	if threshold <= 0 {
		threshold = 5
	}
	return &Service{repo: repo, allocator: allocator, lowStockThreshold: threshold}
}

// MaxListLimit caps an explicit limit. A filter without a limit lists every row.
const MaxListLimit = 500

func normalizeFilter(f ListFilter) ListFilter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Limit < 0 {
		f.Limit = 0
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListMobiles returns mobile groups, newest first.
func (s *Service) ListMobiles(ctx context.Context, filter ListFilter) ([]*Mobile, error) {
	return s.repo.ListMobiles(ctx, normalizeFilter(filter))
}

// ListAccessories returns accessory groups, newest first.
func (s *Service) ListAccessories(ctx context.Context, filter ListFilter) ([]*Accessory, error) {
	return s.repo.ListAccessories(ctx, normalizeFilter(filter))
}

// LowStock returns groups whose quantity is at or below threshold.
// A non-positive threshold uses the configured default.
func (s *Service) LowStock(ctx context.Context, threshold int) (*LowStock, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	mobiles, err := s.repo.LowStockMobiles(ctx, threshold)
	if err != nil {
		return nil, err
	}
	accessories, err := s.repo.LowStockAccessories(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return &LowStock{Threshold: threshold, Mobiles: mobiles, Accessories: accessories}, nil
}

// FindByUnitID resolves a minted identifier (or an accessory prefix) to its group.
func (s *Service) FindByUnitID(ctx context.Context, unitID string) (*UnitLookup, error) {
	unitID = strings.TrimSpace(unitID)
	if unitID == "" {
		return nil, apperror.NewValidation("productId is required")
	}

	m, err := s.repo.FindMobileByUnitID(ctx, unitID)
	if err == nil {
		return &UnitLookup{Kind: KindMobile, UnitID: unitID, Mobile: m}, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	a, err := s.repo.FindAccessoryByUnitID(ctx, unitID)
	if err == nil {
		return &UnitLookup{Kind: KindAccessory, UnitID: unitID, Accessory: a}, nil
	}
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("product", unitID)
	}
	return nil, err
}

// UpdateMobileDetails edits descriptive attributes. Quantities, identifiers
// and IMEIs are only changed by receiving purchases.
func (s *Service) UpdateMobileDetails(ctx context.Context, mobileID string, details MobileDetails) (*Mobile, error) {
	if details.IsEmpty() {
		return nil, apperror.NewValidation("no fields to update")
	}
	if details.SellingPrice != nil && details.SellingPrice.IsNegative() {
		return nil, apperror.NewValidation("sellingPrice must not be negative").
			WithDetail("field", "sellingPrice")
	}
	m, err := s.repo.UpdateMobileDetails(ctx, mobileID, details)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "mobile details updated", "id", mobileID)
	return m, nil
}

// Counter returns the last value issued for a counter key.
func (s *Service) Counter(ctx context.Context, key string) (int64, error) {
	return s.allocator.Current(ctx, strings.ToUpper(strings.TrimSpace(key)))
}
