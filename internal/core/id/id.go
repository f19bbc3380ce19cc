// Package id provides identifier generation for stored rows.
//
// Inventory rows use UUIDv7 (time-ordered). Dealers and purchases carry short
// human-readable business keys such as DLR-20240501-3F9A1C.
package id

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New generates a new UUIDv7 string.
func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v.String()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Business returns PREFIX-YYYYMMDD-XXXXXX with six random hex digits
// taken from a v4 UUID.
func Business(prefix string, now time.Time) string {
	u := uuid.New()
	return prefix + "-" + now.Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(u[:3]))
}

// Dealer returns a new dealer key.
func Dealer(now time.Time) string { return Business("DLR", now) }

// Purchase returns a new purchase key.
func Purchase(now time.Time) string { return Business("PUR", now) }
