// Package inventorytest provides an in-memory inventory.Repository for tests.
package inventorytest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/domain/inventory"
)

// MemRepo keeps groups in maps and enforces the same unique rules as the
// database: each IMEI column and (dealer_id, product_id) of accessories.
type MemRepo struct {
	mu          sync.Mutex
	order       []string
	mobiles     map[string]*inventory.Mobile
	accessories map[string]*inventory.Accessory

	// DuplicateWrites makes the next n mobile writes fail with a duplicate
	// error, as when another request stores the same IMEI between check and write.
	DuplicateWrites int

	// AccessoryCreateRaces makes the next n accessory creates lose to a
	// competing group stored under the same dealer and prefix just before them.
	AccessoryCreateRaces int

	// Err, when set, is returned by every call.
	Err error
}

var _ inventory.Repository = (*MemRepo)(nil)

// New creates an empty MemRepo.
func New() *MemRepo {
	return &MemRepo{
		mobiles:     make(map[string]*inventory.Mobile),
		accessories: make(map[string]*inventory.Accessory),
	}
}

// Mobiles returns copies of all mobile groups in creation order.
func (r *MemRepo) Mobiles() []*inventory.Mobile {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inventory.Mobile
	for _, id := range r.order {
		if m, ok := r.mobiles[id]; ok {
			out = append(out, copyMobile(m))
		}
	}
	return out
}

// Accessories returns copies of all accessory groups in creation order.
func (r *MemRepo) Accessories() []*inventory.Accessory {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inventory.Accessory
	for _, id := range r.order {
		if a, ok := r.accessories[id]; ok {
			out = append(out, copyAccessory(a))
		}
	}
	return out
}

func (r *MemRepo) FindMobile(_ context.Context, lookup inventory.MobileLookup) (*inventory.Mobile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, id := range r.order {
		m, ok := r.mobiles[id]
		if !ok || m.DealerID != lookup.DealerID || m.MobileName != lookup.Name {
			continue
		}
		if lookup.Model != "" && m.ModelNumber != lookup.Model {
			continue
		}
		return copyMobile(m), nil
	}
	return nil, apperror.NewNotFound("mobile", lookup.Name)
}

func (r *MemRepo) GetMobile(_ context.Context, id string) (*inventory.Mobile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m, ok := r.mobiles[id]
	if !ok {
		return nil, apperror.NewNotFound("mobile", id)
	}
	return copyMobile(m), nil
}

func (r *MemRepo) CreateMobile(_ context.Context, m *inventory.Mobile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := r.injectedDuplicate(); err != nil {
		return err
	}
	if err := r.checkIMEI(m.IMEI1, m.IMEI2, ""); err != nil {
		return err
	}
	r.mobiles[m.ID] = copyMobile(m)
	r.order = append(r.order, m.ID)
	return nil
}

func (r *MemRepo) MergeMobile(_ context.Context, id string, d inventory.MobileDelta) (*inventory.Mobile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	cur, ok := r.mobiles[id]
	if !ok {
		return nil, apperror.NewNotFound("mobile", id)
	}
	if err := r.injectedDuplicate(); err != nil {
		return nil, err
	}

	next := copyMobile(cur)
	next.TotalQuantity += d.Quantity
	if d.ExplicitID != "" && !next.HasProductID(d.ExplicitID) {
		next.ProductIDs = append(next.ProductIDs, d.ExplicitID)
	}
	next.ProductIDs = append(next.ProductIDs, d.ProductIDs...)
	if d.Color != "" {
		next.Color = d.Color
	}
	if d.RAM != "" {
		next.RAM = d.RAM
	}
	if d.Storage != "" {
		next.Storage = d.Storage
	}
	if d.ClearIMEIs {
		next.IMEI1, next.IMEI2 = nil, nil
	} else {
		if next.IMEI1 == nil && d.IMEI1 != nil {
			v := *d.IMEI1
			next.IMEI1 = &v
		}
		if next.IMEI2 == nil && d.IMEI2 != nil {
			v := *d.IMEI2
			next.IMEI2 = &v
		}
	}
	if !d.PricePerProduct.IsZero() {
		next.PricePerProduct = d.PricePerProduct
	}
	if !d.SellingPrice.IsZero() {
		next.SellingPrice = d.SellingPrice
	}
	if err := r.checkIMEI(next.IMEI1, next.IMEI2, id); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	r.mobiles[id] = next
	return copyMobile(next), nil
}

func (r *MemRepo) UpdateMobileDetails(_ context.Context, id string, d inventory.MobileDetails) (*inventory.Mobile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m, ok := r.mobiles[id]
	if !ok {
		return nil, apperror.NewNotFound("mobile", id)
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&m.Brand, d.Brand)
	set(&m.RAM, d.RAM)
	set(&m.Storage, d.Storage)
	set(&m.Color, d.Color)
	set(&m.SimSlot, d.SimSlot)
	set(&m.Processor, d.Processor)
	set(&m.DisplaySize, d.DisplaySize)
	set(&m.Camera, d.Camera)
	set(&m.Battery, d.Battery)
	set(&m.OperatingSystem, d.OperatingSystem)
	set(&m.NetworkType, d.NetworkType)
	if d.SellingPrice != nil {
		m.SellingPrice = *d.SellingPrice
	}
	m.UpdatedAt = time.Now()
	return copyMobile(m), nil
}

func (r *MemRepo) IMEIInUse(_ context.Context, slot inventory.IMEISlot, value, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	for id, m := range r.mobiles {
		if id == excludeID {
			continue
		}
		stored := m.IMEI1
		if slot == inventory.Slot2 {
			stored = m.IMEI2
		}
		if stored != nil && *stored == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemRepo) FindAccessory(_ context.Context, dealerID, prefix string) (*inventory.Accessory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, a := range r.accessories {
		if a.DealerID == dealerID && a.ProductID == prefix {
			return copyAccessory(a), nil
		}
	}
	return nil, apperror.NewNotFound("accessory", prefix)
}

func (r *MemRepo) CreateAccessory(_ context.Context, a *inventory.Accessory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.AccessoryCreateRaces > 0 {
		r.AccessoryCreateRaces--
		winner := copyAccessory(a)
		winner.ID = "winner-" + a.ID
		winner.Quantity = 1
		winner.ProductIDs = []string{a.ProductID + "-W001"}
		r.accessories[winner.ID] = winner
		r.order = append(r.order, winner.ID)
	}
	for _, existing := range r.accessories {
		if existing.DealerID == a.DealerID && existing.ProductID == a.ProductID {
			return apperror.NewDuplicate("accessory", "product_id", a.ProductID)
		}
	}
	r.accessories[a.ID] = copyAccessory(a)
	r.order = append(r.order, a.ID)
	return nil
}

func (r *MemRepo) MergeAccessory(_ context.Context, id string, d inventory.AccessoryDelta) (*inventory.Accessory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	a, ok := r.accessories[id]
	if !ok {
		return nil, apperror.NewNotFound("accessory", id)
	}
	a.Quantity += d.Quantity
	a.ProductIDs = append(a.ProductIDs, d.ProductIDs...)
	if !d.UnitPrice.IsZero() {
		a.UnitPrice = d.UnitPrice
	}
	if !d.SellingPrice.IsZero() {
		a.SellingPrice = d.SellingPrice
	}
	a.UpdatedAt = time.Now()
	return copyAccessory(a), nil
}

func (r *MemRepo) ListMobiles(_ context.Context, f inventory.ListFilter) ([]*inventory.Mobile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	search := strings.ToLower(f.Search)
	var out []*inventory.Mobile
	for i := len(r.order) - 1; i >= 0; i-- {
		m, ok := r.mobiles[r.order[i]]
		if !ok {
			continue
		}
		if f.DealerID != "" && m.DealerID != f.DealerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.MobileName+" "+m.ModelNumber+" "+m.Brand), search) {
			continue
		}
		out = append(out, copyMobile(m))
	}
	return page(out, f), nil
}

func (r *MemRepo) ListAccessories(_ context.Context, f inventory.ListFilter) ([]*inventory.Accessory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	search := strings.ToLower(f.Search)
	var out []*inventory.Accessory
	for i := len(r.order) - 1; i >= 0; i-- {
		a, ok := r.accessories[r.order[i]]
		if !ok {
			continue
		}
		if f.DealerID != "" && a.DealerID != f.DealerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.ProductName+" "+a.ProductID), search) {
			continue
		}
		out = append(out, copyAccessory(a))
	}
	return page(out, f), nil
}

func (r *MemRepo) LowStockMobiles(_ context.Context, threshold int) ([]*inventory.Mobile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*inventory.Mobile
	for _, m := range r.mobiles {
		if m.TotalQuantity <= threshold {
			out = append(out, copyMobile(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalQuantity < out[j].TotalQuantity })
	return out, nil
}

func (r *MemRepo) LowStockAccessories(_ context.Context, threshold int) ([]*inventory.Accessory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*inventory.Accessory
	for _, a := range r.accessories {
		if a.Quantity <= threshold {
			out = append(out, copyAccessory(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (r *MemRepo) FindMobileByUnitID(_ context.Context, unitID string) (*inventory.Mobile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, m := range r.mobiles {
		if m.HasProductID(unitID) {
			return copyMobile(m), nil
		}
	}
	return nil, apperror.NewNotFound("mobile", unitID)
}

func (r *MemRepo) FindAccessoryByUnitID(_ context.Context, unitID string) (*inventory.Accessory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, id := range r.order {
		a, ok := r.accessories[id]
		if !ok {
			continue
		}
		if a.ProductID == unitID {
			return copyAccessory(a), nil
		}
		for _, p := range a.ProductIDs {
			if p == unitID {
				return copyAccessory(a), nil
			}
		}
	}
	return nil, apperror.NewNotFound("accessory", unitID)
}

func (r *MemRepo) injectedDuplicate() error {
	if r.DuplicateWrites > 0 {
		r.DuplicateWrites--
		return apperror.NewDuplicate("mobile", "imei_number1", "injected")
	}
	return nil
}

func (r *MemRepo) checkIMEI(imei1, imei2 *string, selfID string) error {
	for id, m := range r.mobiles {
		if id == selfID {
			continue
		}
		if imei1 != nil && m.IMEI1 != nil && *m.IMEI1 == *imei1 {
			return apperror.NewDuplicate("mobile", "imei_number1", *imei1)
		}
		if imei2 != nil && m.IMEI2 != nil && *m.IMEI2 == *imei2 {
			return apperror.NewDuplicate("mobile", "imei_number2", *imei2)
		}
	}
	return nil
}

func page[T any](items []T, f inventory.ListFilter) []T {
	if f.Offset >= len(items) {
		return []T{}
	}
	items = items[f.Offset:]
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items
}

func copyMobile(m *inventory.Mobile) *inventory.Mobile {
	cp := *m
	cp.ProductIDs = append([]string(nil), m.ProductIDs...)
	if m.IMEI1 != nil {
		v := *m.IMEI1
		cp.IMEI1 = &v
	}
	if m.IMEI2 != nil {
		v := *m.IMEI2
		cp.IMEI2 = &v
	}
	return &cp
}

func copyAccessory(a *inventory.Accessory) *inventory.Accessory {
	cp := *a
	cp.ProductIDs = append([]string(nil), a.ProductIDs...)
	return &cp
}

// String is used in test failure output.
func (r *MemRepo) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("MemRepo{mobiles:%d accessories:%d}", len(r.mobiles), len(r.accessories))
}
