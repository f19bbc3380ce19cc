package inventory_repo

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/infrastructure/storage/postgres"
)

const accessoriesTable = "accessories"

func (r *Repo) FindAccessory(ctx context.Context, dealerID, prefix string) (*inventory.Accessory, error) {
	q := r.accessories.SelectQuery().
		Where(squirrel.Eq{"dealer_id": dealerID, "product_id": prefix})
	return r.accessories.Get(ctx, q, prefix)
}

func (r *Repo) CreateAccessory(ctx context.Context, a *inventory.Accessory) error {
	if a.ProductIDs == nil {
		a.ProductIDs = []string{}
	}
	return r.accessories.Insert(ctx, a)
}

// MergeAccessory adds delta to the group in one statement.
func (r *Repo) MergeAccessory(ctx context.Context, id string, delta inventory.AccessoryDelta) (*inventory.Accessory, error) {
	return r.accessories.Returning(ctx, r.mergeAccessoryQuery(id, delta), id)
}

func (r *Repo) mergeAccessoryQuery(id string, d inventory.AccessoryDelta) squirrel.UpdateBuilder {
	ids := d.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	q := postgres.Builder().
		Update(accessoriesTable).
		Set("quantity", squirrel.Expr("quantity + ?", d.Quantity)).
		Set("product_ids", squirrel.Expr("product_ids || ?::text[]", ids))
	if !d.UnitPrice.IsZero() {
		q = q.Set("unit_price", d.UnitPrice)
	}
	if !d.SellingPrice.IsZero() {
		q = q.Set("selling_price", d.SellingPrice)
	}
	return q.Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix(r.returning(r.accessories.Columns()))
}

func (r *Repo) ListAccessories(ctx context.Context, filter inventory.ListFilter) ([]*inventory.Accessory, error) {
	q := r.accessories.SelectQuery().OrderBy("created_at DESC", "id")
	if filter.DealerID != "" {
		q = q.Where(squirrel.Eq{"dealer_id": filter.DealerID})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"product_name": pattern},
			squirrel.ILike{"product_id": pattern},
		})
	}
	return r.accessories.Select(ctx, paginate(q, filter))
}

func (r *Repo) LowStockAccessories(ctx context.Context, threshold int) ([]*inventory.Accessory, error) {
	q := r.accessories.SelectQuery().
		Where(squirrel.LtOrEq{"quantity": threshold}).
		OrderBy("quantity", "product_name")
	return r.accessories.Select(ctx, q)
}

// FindAccessoryByUnitID accepts either a group prefix or a minted unit id.
func (r *Repo) FindAccessoryByUnitID(ctx context.Context, unitID string) (*inventory.Accessory, error) {
	q := r.accessories.SelectQuery().
		Where(squirrel.Or{
			squirrel.Eq{"product_id": unitID},
			squirrel.Expr("? = ANY(product_ids)", unitID),
		}).
		OrderBy("created_at")
	return r.accessories.Get(ctx, q, unitID)
}
