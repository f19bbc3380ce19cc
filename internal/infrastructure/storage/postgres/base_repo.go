package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mobilebill/internal/core/apperror"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// BaseRepo provides insert and lookup by id for a table mapped from T's "db" tags.
// Embed it in concrete repositories.
type BaseRepo[T any] struct {
	txm        *TxManager
	table      string
	entity     string
	selectCols []string
}

// NewBaseRepo creates a base repository. entity names the record in errors.
func NewBaseRepo[T any](txm *TxManager, table, entity string) *BaseRepo[T] {
	return &BaseRepo[T]{
		txm:        txm,
		table:      table,
		entity:     entity,
		selectCols: ExtractDBColumns[T](),
	}
}

// Table returns the table name.
func (r *BaseRepo[T]) Table() string { return r.table }

// Columns returns the mapped columns.
func (r *BaseRepo[T]) Columns() []string { return r.selectCols }

// Querier returns the transaction on ctx, or the pool.
func (r *BaseRepo[T]) Querier(ctx context.Context) Querier {
	return r.txm.GetQuerier(ctx)
}

// SelectQuery starts a SELECT of all mapped columns.
func (r *BaseRepo[T]) SelectQuery() squirrel.SelectBuilder {
	return Builder().Select(r.selectCols...).From(r.table)
}

// InsertQuery builds an INSERT of every mapped column of entity.
func (r *BaseRepo[T]) InsertQuery(entity *T) squirrel.InsertBuilder {
	return Builder().
		Insert(r.table).
		Columns(r.selectCols...).
		Values(ValuesFor(entity, r.selectCols)...)
}

// Insert stores entity.
func (r *BaseRepo[T]) Insert(ctx context.Context, entity *T) error {
	sql, args, err := r.InsertQuery(entity).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return MapError(err, r.entity, "insert")
	}
	return nil
}

// Get scans the single row matched by q. A missing row is a NotFound error for key.
func (r *BaseRepo[T]) Get(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out T
	if err := pgxscan.Get(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", r.entity, err)
	}
	return &out, nil
}

// GetByID retrieves a row by primary key.
func (r *BaseRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return r.Get(ctx, r.SelectQuery().Where(squirrel.Eq{"id": id}), id)
}

// Select scans every row matched by q.
func (r *BaseRepo[T]) Select(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []*T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.entity, err)
	}
	return out, nil
}

// Returning runs a statement ending in RETURNING and scans the row.
// No affected row is a NotFound error for key.
func (r *BaseRepo[T]) Returning(ctx context.Context, q squirrel.Sqlizer, key any) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statement: %w", err)
	}
	var out T
	if err := pgxscan.Get(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entity, key)
		}
		return nil, MapError(err, r.entity, "update")
	}
	return &out, nil
}

// DeleteByID removes a row by primary key.
func (r *BaseRepo[T]) DeleteByID(ctx context.Context, id string) error {
	sql, args, err := Builder().Delete(r.table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(err, r.entity, "delete")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, id)
	}
	return nil
}
