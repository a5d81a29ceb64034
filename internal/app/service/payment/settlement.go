package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/paygate/internal/models"
	"github.com/fatflowers/paygate/pkg/logctx"
	"github.com/fatflowers/paygate/pkg/metrics"
	types "github.com/fatflowers/paygate/pkg/types"
)

// settlementTask is the in-process handle on one payment's settlement.
type settlementTask struct {
	done chan struct{}
	res  *types.PaymentProcessedResponse
	err  error
}

func newSettlementTask() *settlementTask {
	return &settlementTask{done: make(chan struct{})}
}

func (t *settlementTask) complete(res *types.PaymentProcessedResponse, err error) {
	t.res, t.err = res, err
	close(t.done)
}

// wait returns the outcome, or ctx's error with completed=false.
func (t *settlementTask) wait(ctx context.Context) (res *types.PaymentProcessedResponse, completed bool, err error) {
	select {
	case <-t.done:
		if t.err != nil {
			return nil, true, t.err
		}
		r := *t.res
		return &r, true, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (s *Service) startSettlement(ctx context.Context, log *zap.SugaredLogger, ev *models.PaymentInitiatedEvent, txReq *types.TransactionRequest) error {
	task := newSettlementTask()
	if _, loaded := s.tasks.LoadOrStore(ev.PaymentID, task); loaded {
		return fmt.Errorf("%w: settlement for %s already registered", ErrInvariantViolation, ev.PaymentID)
	}

	sctx := logctx.WithLogger(context.WithoutCancel(ctx), log)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		sctx, cancel := context.WithTimeout(sctx, s.settlementTimeout)
		defer cancel()

		res, err := s.settle(sctx, ev, txReq)
		task.complete(res, err)
		time.AfterFunc(s.taskRetention, func() {
			s.tasks.CompareAndDelete(ev.PaymentID, task)
		})
	}()
	return nil
}

// settle submits the transaction and records the terminal outcome. Nothing is
// recorded when the bank fails or never reaches a terminal status.
func (s *Service) settle(ctx context.Context, ev *models.PaymentInitiatedEvent, txReq *types.TransactionRequest) (*types.PaymentProcessedResponse, error) {
	start := time.Now()
	log := logctx.FromCtx(ctx, s.log)

	rec, err := s.bank.SubmitTransaction(ctx, txReq, ev.PaymentID.String())
	if err != nil {
		metrics.ObserveBusinessProcess("payment_settle", "upstream_error", start)
		log.Errorw("bank transaction failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	if !rec.Status.IsTerminal() {
		metrics.ObserveBusinessProcess("payment_settle", "upstream_error", start)
		log.Errorw("bank returned non-terminal status", "status", rec.Status, "transaction_id", rec.ID)
		return nil, fmt.Errorf("%w: bank returned status %s", ErrUpstreamFailure, rec.Status)
	}

	err = s.store.InsertSettled(ctx, &models.PaymentSettledEvent{
		PaymentID:       ev.PaymentID,
		Status:          rec.Status,
		BankTransaction: datatypes.NewJSONType(rec),
	})
	if err != nil {
		metrics.ObserveBusinessProcess("payment_settle", "store_error", start)
		log.Errorw("failed to record settlement", "err", err, "status", rec.Status)
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}

	metrics.ObserveBusinessProcess("payment_settle", rec.Status.String(), start)
	log.Infow("payment settled", "status", rec.Status, "transaction_id", rec.ID)
	return processedResponse(ev, rec.Status), nil
}

// awaitTask waits on a settlement registered in this process. ok is false
// when none is registered. The first reader to observe completion removes it.
func (s *Service) awaitTask(ctx context.Context, paymentID uuid.UUID) (res *types.PaymentProcessedResponse, ok bool, err error) {
	v, found := s.tasks.Load(paymentID)
	if !found {
		return nil, false, nil
	}
	task := v.(*settlementTask)
	res, completed, err := task.wait(ctx)
	if completed {
		s.tasks.CompareAndDelete(paymentID, task)
	}
	if err != nil && !errors.Is(err, ctx.Err()) {
		logctx.FromCtx(ctx, s.log).Warnw("settlement failed", "payment_id", paymentID, "err", err)
	}
	return res, true, err
}
