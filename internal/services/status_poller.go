package services

import (
	"context"
	"sync"
	"time"

	"payway-adapter/internal/models"
	"payway-adapter/internal/payment"

	"go.uber.org/zap"
)

const pollBatchSize = 50

// StatusPoller periodically reconciles pending transactions whose
// notification may have been lost.
type StatusPoller struct {
	service      *PaymentService
	transactions *TransactionStore
	interval     time.Duration
	age          time.Duration
	logger       *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewStatusPoller(service *PaymentService, transactions *TransactionStore, interval, age time.Duration, logger *zap.Logger) *StatusPoller {
	return &StatusPoller{
		service:      service,
		transactions: transactions,
		interval:     interval,
		age:          age,
		logger:       logger.Named("poller"),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start blocks until Stop is called or ctx is done.
func (p *StatusPoller) Start(ctx context.Context) {
	defer close(p.done)
	p.logger.Info("status poller started", zap.Duration("interval", p.interval), zap.Duration("age", p.age))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PollOnce(ctx)
		case <-p.stopChan:
			p.logger.Info("status poller stopped")
			return
		case <-ctx.Done():
			p.logger.Info("status poller stopped", zap.Error(ctx.Err()))
			return
		}
	}
}

func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	<-p.done
}

// PollOnce reconciles one batch of stale pending transactions and returns
// how many were re-checked without error.
func (p *StatusPoller) PollOnce(ctx context.Context) int {
	before := time.Now().Add(-p.age)
	txs, err := p.transactions.ListStale(ctx, []models.TransactionState{models.StatePending}, before, pollBatchSize)
	if err != nil {
		p.logger.Error("failed to list pending transactions", zap.Error(err))
		return 0
	}

	ok := 0
	for i := range txs {
		tx := &txs[i]
		if _, err := p.service.reconcile(ctx, tx, payment.Notification{"tran_id": tx.TranID()}); err != nil {
			p.logger.Warn("reconciliation failed",
				zap.Uint("id", tx.ID),
				zap.String("reference", tx.Reference),
				zap.Error(err),
			)
			continue
		}
		ok++
	}
	if len(txs) > 0 {
		p.logger.Info("poll finished", zap.Int("checked", len(txs)), zap.Int("reconciled", ok))
	}
	return ok
}
