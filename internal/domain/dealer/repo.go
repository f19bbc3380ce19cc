package dealer

import (
	"context"
)

// ListFilter narrows dealer listings.
type ListFilter struct {
	// Search matches name, phone or GST case-insensitively
	Search string
	Limit  int
	Offset int
}

// Repository defines the interface for Dealer persistence.
type Repository interface {
	Create(ctx context.Context, d *Dealer) error
	GetByID(ctx context.Context, id string) (*Dealer, error)
	Update(ctx context.Context, d *Dealer) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*Dealer, error)

	// FindByPhone retrieves dealer by phone (unique).
	FindByPhone(ctx context.Context, phone string) (*Dealer, error)
}
