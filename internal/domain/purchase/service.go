package purchase

import (
	"context"
	"fmt"
	"time"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/core/id"
	"mobilebill/internal/core/tx"
	"mobilebill/internal/domain"
	"mobilebill/internal/domain/dealer"
	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/metrics"
	"mobilebill/pkg/logger"
)

// DealerReader is the part of the dealer catalog the receive flow needs.
type DealerReader interface {
	GetByID(ctx context.Context, id string) (*dealer.Dealer, error)
}

// LineApplier applies one purchase line to stock.
type LineApplier interface {
	Apply(ctx context.Context, line inventory.Line) (*inventory.Result, error)
}

// Config tunes the receive flow.
type Config struct {
	// GuardReceive makes a second receive of the same purchase a no-op.
	// When false, receiving again applies every line again.
	GuardReceive bool
}

// Service provides business operations for purchases.
type Service struct {
	repo      Repository
	dealers   DealerReader
	upserter  LineApplier
	txManager tx.Manager
	cfg       Config
	hooks     *domain.HookRegistry[*Purchase]
	now       func() time.Time
}

// NewService creates a new purchase service.
func NewService(
	repo Repository,
	dealers DealerReader,
	upserter LineApplier,
	txManager tx.Manager,
	cfg Config,
) *Service {
	s := &Service{
		repo:      repo,
		dealers:   dealers,
		upserter:  upserter,
		txManager: txManager,
		cfg:       cfg,
		hooks:     domain.NewHookRegistry[*Purchase](),
		now:       time.Now,
	}
	s.hooks.OnBeforeCreate(s.prepareForCreate)
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Purchase] {
	return s.hooks
}

// prepareForCreate assigns id, status and totals.
func (s *Service) prepareForCreate(_ context.Context, p *Purchase) error {
	now := s.now()
	if p.ID == "" {
		p.ID = id.Purchase(now)
	}
	p.Status = StatusPending
	p.ReceivedAt = nil
	p.CreatedAt = now
	p.UpdatedAt = now
	p.ComputeTotals()
	return nil
}

// Create validates and stores a new pending purchase with its items.
func (s *Service) Create(ctx context.Context, p *Purchase) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.Run(ctx, domain.BeforeCreate, p); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.SaveItems(ctx, p.ID, p.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, p); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "purchase created",
		"id", p.ID,
		"dealer_id", p.DealerID,
		"items", len(p.Items),
		"grand_total", p.GrandTotal.String())
	return nil
}

// GetByID retrieves a purchase with its items.
func (s *Service) GetByID(ctx context.Context, purchaseID string) (*Purchase, error) {
	p, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	p.Items = items
	return p, nil
}

// MaxListLimit caps an explicit limit. Without one every matching purchase is listed.
const MaxListLimit = 500

// List returns purchases, newest purchase date first. Items are not loaded.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Purchase, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperror.NewValidation("to must not be before from")
	}
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

// UpdateStatus moves a purchase to status without touching stock.
// Receive is the way to apply a purchase to inventory.
func (s *Service) UpdateStatus(ctx context.Context, purchaseID string, status Status) (*Purchase, error) {
	p, err := s.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	if p.Status == StatusReceived && status == StatusPending {
		return nil, apperror.NewBusinessRule(apperror.CodeStatusTransition, "a received purchase cannot go back to Pending").
			WithDetail("id", purchaseID)
	}

	now := s.now()
	if err := s.repo.MarkReceived(ctx, purchaseID, now); err != nil {
		return nil, fmt.Errorf("mark received: %w", err)
	}
	p.Status = StatusReceived
	p.ReceivedAt = &now
	p.UpdatedAt = now

	logger.Info(ctx, "purchase status changed", "id", purchaseID, "status", status)
	return p, nil
}

// Receive applies every item of the purchase to inventory and marks it Received.
//
// Items are applied one by one, each in its own statements. A failing item
// stops the run; items before it stay applied and the purchase stays in its
// previous status.
func (s *Service) Receive(ctx context.Context, purchaseID string) (*ReceiveResult, error) {
	p, err := s.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	already := p.IsReceived()
	if already && s.cfg.GuardReceive {
		logger.Info(ctx, "purchase already received, skipping", "id", purchaseID)
		metrics.PurchasesReceived.WithLabelValues("skipped").Inc()
		return &ReceiveResult{Purchase: p, AlreadyReceived: true, Skipped: true}, nil
	}
	if already {
		logger.Warn(ctx, "receiving purchase again, stock will be added twice", "id", purchaseID)
	}

	dealerName, err := s.dealerName(ctx, p.DealerID)
	if err != nil {
		metrics.PurchasesReceived.WithLabelValues("failed").Inc()
		return nil, apperror.NewInternal(fmt.Errorf("load dealer %s: %w", p.DealerID, err))
	}

	results := make([]*inventory.Result, 0, len(p.Items))
	for _, item := range p.Items {
		res, err := s.upserter.Apply(ctx, item.Line(p.DealerID, dealerName))
		if err != nil {
			metrics.PurchasesReceived.WithLabelValues("failed").Inc()
			logger.Error(ctx, "receive stopped",
				"id", purchaseID,
				"line", item.LineNo,
				"applied_lines", len(results),
				"error", err)
			return nil, apperror.NewInternal(fmt.Errorf("line %d (%s): %w", item.LineNo, item.ProductName, err)).
				WithDetail("line", item.LineNo)
		}
		results = append(results, res)
	}

	now := s.now()
	if err := s.repo.MarkReceived(ctx, purchaseID, now); err != nil {
		metrics.PurchasesReceived.WithLabelValues("failed").Inc()
		return nil, apperror.NewInternal(fmt.Errorf("mark received: %w", err))
	}
	p.Status = StatusReceived
	p.ReceivedAt = &now
	p.UpdatedAt = now

	if err := s.hooks.Run(ctx, domain.AfterReceive, p); err != nil {
		logger.Warn(ctx, "after-receive hook failed", "error", err)
	}

	outcome := "received"
	if already {
		outcome = "re_received"
	}
	metrics.PurchasesReceived.WithLabelValues(outcome).Inc()
	logger.Info(ctx, "purchase received",
		"id", purchaseID,
		"dealer", dealerName,
		"lines", len(results),
		"already_received", already)

	return &ReceiveResult{Purchase: p, AlreadyReceived: already, Lines: results}, nil
}

// dealerName resolves the dealer, using dealer.UnknownName when it no longer exists.
func (s *Service) dealerName(ctx context.Context, dealerID string) (string, error) {
	d, err := s.dealers.GetByID(ctx, dealerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "purchase dealer not found", "dealer_id", dealerID)
			return dealer.UnknownName, nil
		}
		return "", err
	}
	return d.Name, nil
}
