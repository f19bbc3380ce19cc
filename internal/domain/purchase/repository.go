package purchase

import (
	"context"
	"time"
)

// Repository defines persistence for purchases and their items.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, id string) (*Purchase, error)
	List(ctx context.Context, filter ListFilter) ([]*Purchase, error)

	// MarkReceived sets status Received and received_at.
	MarkReceived(ctx context.Context, id string, at time.Time) error

	// SaveItems replaces the items of a purchase.
	SaveItems(ctx context.Context, purchaseID string, items []Item) error

	// GetItems returns items ordered by line number.
	GetItems(ctx context.Context, purchaseID string) ([]Item, error)
}
