// Package inventory_repo stores stock groups in PostgreSQL.
//
// Merges are single UPDATE ... RETURNING statements so concurrent receives
// add to quantities and identifier arrays without losing writes.
package inventory_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/infrastructure/storage/postgres"
)

const mobilesTable = "mobiles"

var _ inventory.Repository = (*Repo)(nil)

// Repo implements inventory.Repository over the mobiles and accessories tables.
type Repo struct {
	mobiles     *postgres.BaseRepo[inventory.Mobile]
	accessories *postgres.BaseRepo[inventory.Accessory]
}

// New creates an inventory repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		mobiles:     postgres.NewBaseRepo[inventory.Mobile](txm, mobilesTable, "mobile"),
		accessories: postgres.NewBaseRepo[inventory.Accessory](txm, accessoriesTable, "accessory"),
	}
}

func (r *Repo) returning(cols []string) string {
	return "RETURNING " + strings.Join(cols, ", ")
}

// FindMobile returns the oldest group matching the lookup.
func (r *Repo) FindMobile(ctx context.Context, lookup inventory.MobileLookup) (*inventory.Mobile, error) {
	return r.mobiles.Get(ctx, r.findMobileQuery(lookup), lookup.Name)
}

func (r *Repo) findMobileQuery(lookup inventory.MobileLookup) squirrel.SelectBuilder {
	q := r.mobiles.SelectQuery().
		Where(squirrel.Eq{"dealer_id": lookup.DealerID, "mobile_name": lookup.Name})
	if lookup.Model != "" {
		q = q.Where(squirrel.Eq{"model_number": lookup.Model})
	}
	return q.OrderBy("created_at", "id")
}

func (r *Repo) GetMobile(ctx context.Context, id string) (*inventory.Mobile, error) {
	return r.mobiles.GetByID(ctx, id)
}

func (r *Repo) CreateMobile(ctx context.Context, m *inventory.Mobile) error {
	if m.ProductIDs == nil {
		m.ProductIDs = []string{}
	}
	return r.mobiles.Insert(ctx, m)
}

// MergeMobile adds delta to the group in one statement.
func (r *Repo) MergeMobile(ctx context.Context, id string, delta inventory.MobileDelta) (*inventory.Mobile, error) {
	return r.mobiles.Returning(ctx, r.mergeMobileQuery(id, delta), id)
}

func (r *Repo) mergeMobileQuery(id string, d inventory.MobileDelta) squirrel.UpdateBuilder {
	ids := d.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	// The explicit id is tested against the row being updated, not a prior read.
	productIDs := squirrel.Expr("product_ids || ?::text[]", ids)
	if d.ExplicitID != "" {
		productIDs = squirrel.Expr(
			"(CASE WHEN ?::text = ANY(product_ids) THEN product_ids ELSE product_ids || ?::text END) || ?::text[]",
			d.ExplicitID, d.ExplicitID, ids)
	}
	q := postgres.Builder().
		Update(mobilesTable).
		Set("total_quantity", squirrel.Expr("total_quantity + ?", d.Quantity)).
		Set("product_ids", productIDs).
		Set("color", squirrel.Expr("COALESCE(NULLIF(?, ''), color)", d.Color)).
		Set("ram", squirrel.Expr("COALESCE(NULLIF(?, ''), ram)", d.RAM)).
		Set("storage", squirrel.Expr("COALESCE(NULLIF(?, ''), storage)", d.Storage))

	switch {
	case d.ClearIMEIs:
		q = q.Set("imei_number1", nil).Set("imei_number2", nil)
	default:
		if d.IMEI1 != nil {
			q = q.Set("imei_number1", squirrel.Expr("COALESCE(imei_number1, ?)", *d.IMEI1))
		}
		if d.IMEI2 != nil {
			q = q.Set("imei_number2", squirrel.Expr("COALESCE(imei_number2, ?)", *d.IMEI2))
		}
	}

	if !d.PricePerProduct.IsZero() {
		q = q.Set("price_per_product", d.PricePerProduct)
	}
	if !d.SellingPrice.IsZero() {
		q = q.Set("selling_price", d.SellingPrice)
	}

	return q.Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix(r.returning(r.mobiles.Columns()))
}

// UpdateMobileDetails sets the non-nil fields of details.
func (r *Repo) UpdateMobileDetails(ctx context.Context, id string, details inventory.MobileDetails) (*inventory.Mobile, error) {
	return r.mobiles.Returning(ctx, r.detailsQuery(id, details), id)
}

func (r *Repo) detailsQuery(id string, d inventory.MobileDetails) squirrel.UpdateBuilder {
	set := map[string]any{"updated_at": squirrel.Expr("now()")}
	text := map[string]*string{
		"brand":            d.Brand,
		"ram":              d.RAM,
		"storage":          d.Storage,
		"color":            d.Color,
		"sim_slot":         d.SimSlot,
		"processor":        d.Processor,
		"display_size":     d.DisplaySize,
		"camera":           d.Camera,
		"battery":          d.Battery,
		"operating_system": d.OperatingSystem,
		"network_type":     d.NetworkType,
	}
	for col, v := range text {
		if v != nil {
			set[col] = strings.TrimSpace(*v)
		}
	}
	if d.SellingPrice != nil {
		set["selling_price"] = *d.SellingPrice
	}
	return postgres.Builder().
		Update(mobilesTable).
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix(r.returning(r.mobiles.Columns()))
}

// IMEIInUse reports whether value is stored in slot by another group.
func (r *Repo) IMEIInUse(ctx context.Context, slot inventory.IMEISlot, value, excludeID string) (bool, error) {
	sql, args, err := imeiInUseQuery(slot, value, excludeID).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var exists bool
	if err := r.mobiles.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check imei: %w", err)
	}
	return exists, nil
}

func imeiInUseQuery(slot inventory.IMEISlot, value, excludeID string) squirrel.SelectBuilder {
	col := "imei_number1"
	if slot == inventory.Slot2 {
		col = "imei_number2"
	}
	inner := postgres.Builder().Select("1").From(mobilesTable).Where(squirrel.Eq{col: value})
	if excludeID != "" {
		inner = inner.Where(squirrel.NotEq{"id": excludeID})
	}
	return inner.Prefix("SELECT EXISTS (").Suffix(")")
}

func (r *Repo) ListMobiles(ctx context.Context, filter inventory.ListFilter) ([]*inventory.Mobile, error) {
	return r.mobiles.Select(ctx, r.listMobilesQuery(filter))
}

func (r *Repo) listMobilesQuery(f inventory.ListFilter) squirrel.SelectBuilder {
	q := r.mobiles.SelectQuery().OrderBy("created_at DESC", "id")
	if f.DealerID != "" {
		q = q.Where(squirrel.Eq{"dealer_id": f.DealerID})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"mobile_name": pattern},
			squirrel.ILike{"model_number": pattern},
			squirrel.ILike{"brand": pattern},
		})
	}
	return paginate(q, f)
}

func (r *Repo) LowStockMobiles(ctx context.Context, threshold int) ([]*inventory.Mobile, error) {
	q := r.mobiles.SelectQuery().
		Where(squirrel.LtOrEq{"total_quantity": threshold}).
		OrderBy("total_quantity", "mobile_name")
	return r.mobiles.Select(ctx, q)
}

// FindMobileByUnitID finds the group whose product_ids contains unitID.
func (r *Repo) FindMobileByUnitID(ctx context.Context, unitID string) (*inventory.Mobile, error) {
	q := r.mobiles.SelectQuery().Where(squirrel.Expr("? = ANY(product_ids)", unitID))
	return r.mobiles.Get(ctx, q, unitID)
}

func paginate(q squirrel.SelectBuilder, f inventory.ListFilter) squirrel.SelectBuilder {
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}
