package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"mobilebill/internal/core/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// constraintFields maps unique constraints to the field reported to clients.
var constraintFields = map[string]string{
	"dealers_phone_key":              "phone",
	"dealers_gst_key":                "gst",
	"mobiles_imei1_key":              "imeiNumber1",
	"mobiles_imei2_key":              "imeiNumber2",
	"accessories_dealer_product_key": "productId",
	"purchases_pkey":                 "id",
}

// MapError converts PostgreSQL constraint errors into AppErrors.
// Other errors are wrapped with op.
func MapError(err error, entity, op string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			field, ok := constraintFields[pgErr.ConstraintName]
			if !ok {
				field = pgErr.ConstraintName
			}
			return apperror.NewDuplicate(entity, field, pgErr.Detail).WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewValidation(fmt.Sprintf("%s references a missing record", entity)).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}
