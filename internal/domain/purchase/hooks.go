package purchase

import (
	"context"

	"mobilebill/internal/domain"
	"mobilebill/internal/metrics"
)

// RegisterMetricHooks counts created purchases and adds the grand total of
// every received purchase, re-receives included.
func RegisterMetricHooks(hooks *domain.HookRegistry[*Purchase]) {
	hooks.OnAfterCreate(func(_ context.Context, _ *Purchase) error {
		metrics.PurchasesCreated.Inc()
		return nil
	})
	hooks.OnAfterReceive(func(_ context.Context, p *Purchase) error {
		metrics.ReceivedValue.Add(p.GrandTotal.InexactFloat64())
		return nil
	})
}
