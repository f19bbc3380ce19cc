package dealer

import (
	"context"
	"fmt"
	"time"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/core/id"
	"mobilebill/internal/core/tx"
	"mobilebill/pkg/logger"
)

// Service provides business logic for the Dealer catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new Dealer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager, now: time.Now}
}

// Create validates and stores a new dealer, generating its id.
func (s *Service) Create(ctx context.Context, d *Dealer) error {
	d.Normalize()
	if err := d.Validate(ctx); err != nil {
		return err
	}

	now := s.now()
	if d.ID == "" {
		d.ID = id.Dealer(now)
	}
	d.CreatedAt = now
	d.UpdatedAt = now

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkPhoneFree(ctx, d.Phone, ""); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, d); err != nil {
			return fmt.Errorf("create dealer: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "dealer created", "id", d.ID, "name", d.Name)
	return nil
}

// GetByID retrieves a dealer.
func (s *Service) GetByID(ctx context.Context, dealerID string) (*Dealer, error) {
	return s.repo.GetByID(ctx, dealerID)
}

// MaxListLimit caps an explicit limit. Without one every dealer is listed.
const MaxListLimit = 500

// List returns dealers ordered by name.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Dealer, error) {
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Update replaces the editable fields of an existing dealer.
func (s *Service) Update(ctx context.Context, d *Dealer) error {
	d.Normalize()
	if err := d.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, d.ID)
		if err != nil {
			return err
		}
		if err := s.checkPhoneFree(ctx, d.Phone, d.ID); err != nil {
			return err
		}
		d.CreatedAt = existing.CreatedAt
		d.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, d); err != nil {
			return fmt.Errorf("update dealer: %w", err)
		}
		return nil
	})
}

// Delete removes a dealer. Purchases keep their dealer id and receive as "Unknown".
func (s *Service) Delete(ctx context.Context, dealerID string) error {
	if err := s.repo.Delete(ctx, dealerID); err != nil {
		return err
	}
	logger.Info(ctx, "dealer deleted", "id", dealerID)
	return nil
}

// checkPhoneFree rejects a phone already used by another dealer.
func (s *Service) checkPhoneFree(ctx context.Context, phone, excludeID string) error {
	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		// Not found is OK; other errors must be propagated.
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return apperror.NewDuplicate("dealer", "phone", phone)
	}
	return nil
}
