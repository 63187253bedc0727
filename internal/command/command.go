// Package command holds the write side: every operation runs as one unit of
// work on the store, and read-model caches and domain events are only touched
// after that unit commits.
package command

import (
	"context"
	"log"
	"time"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ledger_transactions_total",
	Help: "Ledger money movements by type and outcome",
}, []string{"type", "outcome"})

var now = func() time.Time { return time.Now().UTC() }

// Read-model hooks called after commit. The read repositories implement them.
type CustomerViewCache interface {
	InvalidateCustomerView(ctx context.Context, id int64)
}

type AccountViewCache interface {
	InvalidateAccountView(ctx context.Context, id int64, number string)
}

type TransactionViewCache interface {
	CacheTransactionView(ctx context.Context, view *models.TransactionView)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return ledger.Code(err)
}

// publish is best effort: the unit has already committed.
func publish(ctx context.Context, p events.Emitter, stream, eventType string, data any) {
	if err := p.Publish(ctx, stream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
