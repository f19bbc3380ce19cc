// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mobilebill/db/migrations"
	"mobilebill/internal/config"
	"mobilebill/internal/core/apperror"
	"mobilebill/internal/core/types"
	"mobilebill/internal/domain/codes"
	"mobilebill/internal/domain/dealer"
	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/domain/purchase"
	"mobilebill/internal/infrastructure/numerator"
	"mobilebill/internal/infrastructure/storage/postgres"
	"mobilebill/internal/infrastructure/storage/postgres/catalog_repo"
	"mobilebill/internal/infrastructure/storage/postgres/document_repo"
	"mobilebill/internal/infrastructure/storage/postgres/inventory_repo"
	"mobilebill/pkg/logger"
)

const demoPhone = "9876543210"

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.Migrate(ctx, pool, migrations.FS); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	dealerRepo := catalog_repo.NewDealerRepo(txManager)
	dealerService := dealer.NewService(dealerRepo, txManager)

	d, err := seedDealer(ctx, dealerRepo, dealerService, log)
	if err != nil {
		log.Fatalw("failed to seed dealer", "error", err)
	}

	allocator := numerator.New(pool)
	purchaseService := purchase.NewService(
		document_repo.NewPurchaseRepo(txManager),
		dealerService,
		inventory.NewUpserter(inventory_repo.New(txManager), allocator),
		txManager,
		purchase.Config{GuardReceive: cfg.Purchases.GuardReceive},
	)

	p := demoPurchase(d.ID)
	if err := purchaseService.Create(ctx, p); err != nil {
		log.Fatalw("failed to seed purchase", "error", err)
	}
	log.Infow("demo purchase created", "purchase_id", p.ID, "grand_total", p.GrandTotal.String())

	if os.Getenv("SEED_RECEIVE") == "true" {
		res, err := purchaseService.Receive(ctx, p.ID)
		if err != nil {
			log.Fatalw("failed to receive demo purchase", "error", err)
		}
		for _, line := range res.Lines {
			log.Infow("line applied", "line", line.LineNo, "group_id", line.GroupID, "unit_ids", line.UnitIDs)
		}
	}

	log.Info("seeding completed successfully")
}

func seedDealer(ctx context.Context, repo dealer.Repository, svc *dealer.Service, log *logger.Logger) (*dealer.Dealer, error) {
	existing, err := repo.FindByPhone(ctx, demoPhone)
	if err == nil {
		log.Infow("dealer already exists", "dealer_id", existing.ID)
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("check dealer exists: %w", err)
	}

	address := "12 MG Road, Bengaluru"
	d := &dealer.Dealer{Name: "Acme Traders", Phone: demoPhone, Address: &address}
	if err := svc.Create(ctx, d); err != nil {
		return nil, err
	}
	log.Infow("dealer created", "dealer_id", d.ID)
	return d, nil
}

func demoPurchase(dealerID string) *purchase.Purchase {
	return &purchase.Purchase{
		DealerID:      dealerID,
		PurchaseDate:  time.Now().UTC().Truncate(24 * time.Hour),
		InvoiceNumber: "INV-DEMO-1",
		PaymentMode:   "Cash",
		GSTEnabled:    true,
		GSTPercentage: types.MustMoney("18"),
		Items: []purchase.Item{{
			Category:      codes.CategoryMobile,
			ProductName:   "Galaxy A14",
			Model:         "SM-A145F",
			Brand:         "Samsung",
			Quantity:      2,
			PurchasePrice: types.MustMoney("11000"),
			SellingPrice:  types.MustMoney("12999"),
			Color:         "Black",
			RAM:           "4GB",
			Storage:       "64GB",
		}},
	}
}
