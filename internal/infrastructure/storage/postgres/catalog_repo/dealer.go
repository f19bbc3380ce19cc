// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/domain/dealer"
	"mobilebill/internal/infrastructure/storage/postgres"
)

const dealersTable = "dealers"

var _ dealer.Repository = (*DealerRepo)(nil)

// DealerRepo implements dealer.Repository.
type DealerRepo struct {
	*postgres.BaseRepo[dealer.Dealer]
}

// NewDealerRepo creates a new dealer repository.
func NewDealerRepo(txm *postgres.TxManager) *DealerRepo {
	return &DealerRepo{
		BaseRepo: postgres.NewBaseRepo[dealer.Dealer](txm, dealersTable, "dealer"),
	}
}

// Create inserts a dealer.
func (r *DealerRepo) Create(ctx context.Context, d *dealer.Dealer) error {
	return r.Insert(ctx, d)
}

// Update overwrites every column except id and created_at.
func (r *DealerRepo) Update(ctx context.Context, d *dealer.Dealer) error {
	sql, args, err := r.updateQuery(d).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "dealer", "update")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("dealer", d.ID)
	}
	return nil
}

func (r *DealerRepo) updateQuery(d *dealer.Dealer) squirrel.UpdateBuilder {
	data := postgres.StructToMap(d)
	delete(data, "id")
	delete(data, "created_at")
	return postgres.Builder().
		Update(dealersTable).
		SetMap(data).
		Where(squirrel.Eq{"id": d.ID})
}

// Delete removes a dealer. Purchases keep their dealer_id.
func (r *DealerRepo) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}

// List returns dealers ordered by name.
func (r *DealerRepo) List(ctx context.Context, filter dealer.ListFilter) ([]*dealer.Dealer, error) {
	return r.Select(ctx, r.listQuery(filter))
}

func (r *DealerRepo) listQuery(filter dealer.ListFilter) squirrel.SelectBuilder {
	q := r.SelectQuery().OrderBy("name", "id")
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"phone": pattern},
			squirrel.ILike{"gst": pattern},
		})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// FindByPhone retrieves a dealer by its unique phone.
func (r *DealerRepo) FindByPhone(ctx context.Context, phone string) (*dealer.Dealer, error) {
	return r.Get(ctx, r.SelectQuery().Where(squirrel.Eq{"phone": phone}), phone)
}
