// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/domain/purchase"
	"mobilebill/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "purchases"
	purchaseItemsTable = "purchase_items"
)

var _ purchase.Repository = (*PurchaseRepo)(nil)

var itemColumns = postgres.ExtractDBColumns[purchase.Item]()

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*postgres.BaseRepo[purchase.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseRepo: postgres.NewBaseRepo[purchase.Purchase](txm, purchasesTable, "purchase"),
	}
}

// Create inserts the purchase header.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	return r.Insert(ctx, p)
}

// List returns purchase headers, newest purchase date first.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) ([]*purchase.Purchase, error) {
	return r.Select(ctx, r.listQuery(filter))
}

func (r *PurchaseRepo) listQuery(filter purchase.ListFilter) squirrel.SelectBuilder {
	q := r.SelectQuery().OrderBy("purchase_date DESC", "created_at DESC")
	if filter.DealerID != "" {
		q = q.Where(squirrel.Eq{"dealer_id": filter.DealerID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"purchase_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"purchase_date": *filter.To})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// MarkReceived sets status Received and received_at.
func (r *PurchaseRepo) MarkReceived(ctx context.Context, id string, at time.Time) error {
	sql, args, err := markReceivedQuery(id, at).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "purchase", "update")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase", id)
	}
	return nil
}

func markReceivedQuery(id string, at time.Time) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update(purchasesTable).
		Set("status", purchase.StatusReceived).
		Set("received_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id})
}

// SaveItems replaces the items of a purchase.
func (r *PurchaseRepo) SaveItems(ctx context.Context, purchaseID string, items []purchase.Item) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + purchaseItemsTable + " WHERE purchase_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, purchaseID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	sql, args, err := insertItemsQuery(purchaseID, items).ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "purchase item", "insert")
	}
	return nil
}

func insertItemsQuery(purchaseID string, items []purchase.Item) squirrel.InsertBuilder {
	q := postgres.Builder().
		Insert(purchaseItemsTable).
		Columns(append([]string{"purchase_id"}, itemColumns...)...)
	for i := range items {
		q = q.Values(append([]any{purchaseID}, postgres.ValuesFor(&items[i], itemColumns)...)...)
	}
	return q
}

// GetItems returns items ordered by line number.
func (r *PurchaseRepo) GetItems(ctx context.Context, purchaseID string) ([]purchase.Item, error) {
	sql, args, err := postgres.Builder().
		Select(itemColumns...).
		From(purchaseItemsTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []purchase.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}
