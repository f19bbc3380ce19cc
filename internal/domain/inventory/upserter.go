package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/core/id"
	"mobilebill/internal/core/numerator"
	"mobilebill/internal/domain/codes"
	"mobilebill/internal/metrics"
	"mobilebill/pkg/logger"
)

// Upserter applies received purchase lines to stock.
//
// One counter value is drawn per unit. Counter values drawn for a line whose
// write later fails are not returned.
type Upserter struct {
	repo      Repository
	allocator numerator.Allocator
	now       func() time.Time
}

// NewUpserter creates an Upserter.
func NewUpserter(repo Repository, allocator numerator.Allocator) *Upserter {
	return &Upserter{repo: repo, allocator: allocator, now: time.Now}
}

// Apply finds or creates the group of line and adds its units to it.
// Lines of a category without inventory effect are logged and skipped.
func (u *Upserter) Apply(ctx context.Context, line Line) (*Result, error) {
	if !line.Category.HasInventoryEffect() {
		logger.Warn(ctx, "purchase line has no inventory effect",
			"line", line.LineNo,
			"category", line.Category,
			"product", line.ProductName)
		metrics.SkippedLines.Inc()
		return &Result{LineNo: line.LineNo, Kind: KindSkipped}, nil
	}
	if line.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("line", line.LineNo)
	}

	if line.Category == codes.CategoryMobile {
		return u.applyMobile(ctx, line)
	}
	return u.applyAccessory(ctx, line)
}

// mint draws n counter values for key.
func (u *Upserter) mint(ctx context.Context, category codes.Category, key string, n int) ([]string, error) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c, err := u.allocator.Next(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("allocate %s: %w", key, err)
		}
		ids = append(ids, codes.UnitID(key, c))
	}
	metrics.UnitsMinted.WithLabelValues(string(category)).Add(float64(n))
	return ids, nil
}

func (u *Upserter) applyMobile(ctx context.Context, line Line) (*Result, error) {
	model := strings.TrimSpace(line.Model)
	existing, err := u.repo.FindMobile(ctx, MobileLookup{
		DealerID: line.DealerID,
		Name:     line.ProductName,
		Model:    model,
	})
	if err != nil && !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("find mobile: %w", err)
	}

	key := codes.MobileKey(line.DealerName, model, line.ProductName)
	identity := NewIdentity(line.IMEI1, line.IMEI2)
	explicit := strings.TrimSpace(line.ProductID)

	if existing != nil {
		return u.mergeMobile(ctx, line, existing, key, identity, explicit)
	}
	return u.createMobile(ctx, line, model, key, identity, explicit)
}

func (u *Upserter) mergeMobile(ctx context.Context, line Line, existing *Mobile, key string, identity Identity, explicit string) (*Result, error) {
	minted, err := u.mint(ctx, codes.CategoryMobile, key, line.Quantity)
	if err != nil {
		return nil, err
	}

	// Only empty slots take a new IMEI, so only those can collide.
	if existing.IMEI1 != nil {
		identity = identity.Without(Slot1)
	}
	if existing.IMEI2 != nil {
		identity = identity.Without(Slot2)
	}
	identity, demoted, err := u.checkIdentity(ctx, line, identity, existing.ID)
	if err != nil {
		return nil, err
	}

	delta := MobileDelta{
		Quantity:        line.Quantity,
		ProductIDs:      minted,
		ExplicitID:      explicit,
		Color:           strings.TrimSpace(line.Color),
		RAM:             strings.TrimSpace(line.RAM),
		Storage:         strings.TrimSpace(line.Storage),
		IMEI1:           identity.Get(Slot1),
		IMEI2:           identity.Get(Slot2),
		ClearIMEIs:      demoted,
		PricePerProduct: line.PurchasePrice,
		SellingPrice:    line.SellingPrice,
	}

	merged, err := u.repo.MergeMobile(ctx, existing.ID, delta)
	if apperror.IsDuplicate(err) {
		u.logDemotion(ctx, line, "write rejected by unique index")
		demoted = true
		delta.IMEI1, delta.IMEI2, delta.ClearIMEIs = nil, nil, true
		merged, err = u.repo.MergeMobile(ctx, existing.ID, delta)
	}
	if err != nil {
		return nil, fmt.Errorf("merge mobile %s: %w", existing.ID, err)
	}

	return &Result{
		LineNo:   line.LineNo,
		Kind:     KindMobile,
		GroupID:  merged.ID,
		UnitIDs:  minted,
		Identity: storedIdentity(merged),
		Demoted:  demoted,
	}, nil
}

func (u *Upserter) createMobile(ctx context.Context, line Line, model, key string, identity Identity, explicit string) (*Result, error) {
	minted, err := u.mint(ctx, codes.CategoryMobile, key, line.Quantity)
	if err != nil {
		return nil, err
	}
	var productIDs []string
	if explicit != "" {
		productIDs = append(productIDs, explicit)
	}
	productIDs = append(productIDs, minted...)

	identity, demoted, err := u.checkIdentity(ctx, line, identity, "")
	if err != nil {
		return nil, err
	}

	now := u.now()
	m := &Mobile{
		ID:              id.New(),
		MobileName:      line.ProductName,
		Brand:           strings.TrimSpace(line.Brand),
		ModelNumber:     model,
		IMEI1:           identity.Get(Slot1),
		IMEI2:           identity.Get(Slot2),
		DealerID:        line.DealerID,
		DealerName:      line.DealerName,
		PricePerProduct: line.PurchasePrice,
		SellingPrice:    line.SellingPrice,
		TotalQuantity:   line.Quantity,
		ProductIDs:      productIDs,
		RAM:             strings.TrimSpace(line.RAM),
		Storage:         strings.TrimSpace(line.Storage),
		Color:           strings.TrimSpace(line.Color),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = u.repo.CreateMobile(ctx, m)
	if apperror.IsDuplicate(err) {
		u.logDemotion(ctx, line, "write rejected by unique index")
		demoted = true
		m.IMEI1, m.IMEI2 = nil, nil
		err = u.repo.CreateMobile(ctx, m)
	}
	if err != nil {
		return nil, fmt.Errorf("create mobile: %w", err)
	}

	return &Result{
		LineNo:   line.LineNo,
		Kind:     KindMobile,
		GroupID:  m.ID,
		Created:  true,
		UnitIDs:  minted,
		Identity: storedIdentity(m),
		Demoted:  demoted,
	}, nil
}

// checkIdentity demotes identity to NoImei when any of its IMEIs is held by another group.
func (u *Upserter) checkIdentity(ctx context.Context, line Line, identity Identity, excludeID string) (Identity, bool, error) {
	for _, slot := range []IMEISlot{Slot1, Slot2} {
		v := identity.Get(slot)
		if v == nil {
			continue
		}
		inUse, err := u.repo.IMEIInUse(ctx, slot, *v, excludeID)
		if err != nil {
			return identity, false, fmt.Errorf("check imei: %w", err)
		}
		if inUse {
			u.logDemotion(ctx, line, fmt.Sprintf("imei_number%d already stored", slot))
			return identity.Demote(), true, nil
		}
	}
	return identity, false, nil
}

func (u *Upserter) logDemotion(ctx context.Context, line Line, reason string) {
	logger.Warn(ctx, "storing mobile without IMEIs",
		"line", line.LineNo,
		"product", line.ProductName,
		"dealer_id", line.DealerID,
		"reason", reason)
	metrics.IdentityDemotions.Inc()
}

func (u *Upserter) applyAccessory(ctx context.Context, line Line) (*Result, error) {
	prefix := codes.AccessoryKey(line.DealerName, line.ProductName)

	existing, err := u.repo.FindAccessory(ctx, line.DealerID, prefix)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("find accessory: %w", err)
	}

	minted, err := u.mint(ctx, codes.CategoryAccessory, prefix, line.Quantity)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		now := u.now()
		a := &Accessory{
			ID:           id.New(),
			DealerID:     line.DealerID,
			DealerName:   line.DealerName,
			ProductID:    prefix,
			ProductIDs:   minted,
			ProductName:  line.ProductName,
			Quantity:     line.Quantity,
			UnitPrice:    line.PurchasePrice,
			SellingPrice: line.SellingPrice,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = u.repo.CreateAccessory(ctx, a)
		if err == nil {
			return &Result{LineNo: line.LineNo, Kind: KindAccessory, GroupID: a.ID, Created: true, UnitIDs: minted}, nil
		}
		if !apperror.IsDuplicate(err) {
			return nil, fmt.Errorf("create accessory: %w", err)
		}
		// A concurrent receive created the group first; add to it instead.
		existing, err = u.repo.FindAccessory(ctx, line.DealerID, prefix)
		if err != nil {
			return nil, fmt.Errorf("find accessory: %w", err)
		}
	}

	merged, err := u.repo.MergeAccessory(ctx, existing.ID, AccessoryDelta{
		Quantity:     line.Quantity,
		ProductIDs:   minted,
		UnitPrice:    line.PurchasePrice,
		SellingPrice: line.SellingPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("merge accessory %s: %w", existing.ID, err)
	}
	return &Result{LineNo: line.LineNo, Kind: KindAccessory, GroupID: merged.ID, UnitIDs: minted}, nil
}

func storedIdentity(m *Mobile) IdentityKind {
	var a, b string
	if m.IMEI1 != nil {
		a = *m.IMEI1
	}
	if m.IMEI2 != nil {
		b = *m.IMEI2
	}
	return NewIdentity(a, b).Kind()
}
