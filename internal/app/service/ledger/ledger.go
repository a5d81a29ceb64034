package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/pkg/logctx"
	"github.com/fatflowers/paygate/pkg/metrics"
	"github.com/fatflowers/paygate/pkg/types"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvariantViolation means the ledger's single-writer rules were broken.
	ErrInvariantViolation = errors.New("ledger invariant violated")
)

type Options struct {
	MinDelay   time.Duration
	MaxDelay   time.Duration
	RejectRate float64
	// Float64 returns a value in [0, 1). Defaults to math/rand/v2.Float64.
	Float64 func() float64
	Now     func() time.Time
}

// Ledger simulates an acquiring bank: each transaction id is claimed once,
// recorded as Accepted and settled to Completed or Rejected after a delay.
type Ledger struct {
	opts Options
	log  *zap.SugaredLogger

	// bindings maps an idempotency token to its transaction id.
	bindings sync.Map
	// records maps a transaction id to its current *types.TransactionRecord.
	records sync.Map
	claimMu sync.Mutex

	inflight sync.WaitGroup
}

func New(opts Options, log *zap.SugaredLogger) *Ledger {
	if opts.Float64 == nil {
		opts.Float64 = rand.Float64
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	return &Ledger{opts: opts, log: log}
}

// ResolveIdentity returns the transaction id bound to token, binding a fresh
// one on first sight. An empty token always yields a fresh id.
func (l *Ledger) ResolveIdentity(token string) uuid.UUID {
	if token == "" {
		return uuid.New()
	}
	if v, ok := l.bindings.Load(token); ok {
		return v.(uuid.UUID)
	}
	v, _ := l.bindings.LoadOrStore(token, uuid.New())
	return v.(uuid.UUID)
}

// ClaimOrFetch returns the record for id, creating an Accepted record if none
// exists. created is true for exactly one caller per id.
func (l *Ledger) ClaimOrFetch(id uuid.UUID) (rec *types.TransactionRecord, created bool, err error) {
	l.claimMu.Lock()
	defer l.claimMu.Unlock()

	if v, ok := l.records.Load(id); ok {
		return v.(*types.TransactionRecord), false, nil
	}
	now := l.opts.Now()
	rec = &types.TransactionRecord{
		ID:      id,
		Status:  types.TransactionStatusAccepted,
		Started: now,
		Updated: now,
	}
	if _, loaded := l.records.LoadOrStore(id, rec); loaded {
		return nil, false, fmt.Errorf("%w: record %s created outside claim", ErrInvariantViolation, id)
	}
	return rec, true, nil
}

// Settle waits the processing delay, then replaces prev with a terminal
// record. prev must still be the stored record for id.
func (l *Ledger) Settle(id uuid.UUID, prev *types.TransactionRecord) (*types.TransactionRecord, error) {
	if prev == nil || prev.ID != id {
		return nil, fmt.Errorf("%w: settle %s with foreign record", ErrInvariantViolation, id)
	}
	time.Sleep(l.delay())

	status := types.TransactionStatusCompleted
	if l.opts.Float64() < l.opts.RejectRate {
		status = types.TransactionStatusRejected
	}
	updated := l.opts.Now()
	if updated.Before(prev.Updated) {
		updated = prev.Updated
	}
	next := &types.TransactionRecord{
		ID:      id,
		Status:  status,
		Started: prev.Started,
		Updated: updated,
	}
	if !l.records.CompareAndSwap(id, prev, next) {
		if _, ok := l.records.Load(id); !ok {
			return nil, fmt.Errorf("%w: record %s removed during settlement", ErrInvariantViolation, id)
		}
		return nil, fmt.Errorf("%w: record %s replaced during settlement", ErrInvariantViolation, id)
	}
	return next, nil
}

func (l *Ledger) delay() time.Duration {
	spread := l.opts.MaxDelay - l.opts.MinDelay
	if spread <= 0 {
		return l.opts.MinDelay
	}
	return l.opts.MinDelay + time.Duration(l.opts.Float64()*float64(spread))
}

// GetStatus returns the current record for id.
func (l *Ledger) GetStatus(id uuid.UUID) (*types.TransactionRecord, error) {
	if v, ok := l.records.Load(id); ok {
		return v.(*types.TransactionRecord), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
}

// Process runs a transaction request end to end. A replayed token returns
// the stored record immediately, which may still be Accepted. The caller that
// claims the transaction waits for settlement; settlement itself is not
// cancelled with ctx.
func (l *Ledger) Process(ctx context.Context, token string) (*types.TransactionRecord, error) {
	id := l.ResolveIdentity(token)
	log := logctx.FromCtx(ctx, l.log).With("transaction_id", id)

	if rec, err := l.GetStatus(id); err == nil {
		log.Infow("replayed transaction", "status", rec.Status)
		return rec, nil
	}

	rec, created, err := l.ClaimOrFetch(id)
	if err != nil {
		log.Errorw("claim failed", "err", err)
		return nil, err
	}
	if !created {
		log.Infow("replayed transaction", "status", rec.Status)
		return rec, nil
	}

	type result struct {
		rec *types.TransactionRecord
		err error
	}
	done := make(chan result, 1)
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		start := time.Now()
		next, err := l.Settle(id, rec)
		if err != nil {
			log.Errorw("settlement failed", "err", err)
			metrics.ObserveBusinessProcess("bank_settle", "error", start)
		} else {
			log.Infow("transaction settled", "status", next.Status)
			metrics.ObserveBusinessProcess("bank_settle", next.Status.String(), start)
		}
		done <- result{next, err}
	}()

	select {
	case r := <-done:
		return r.rec, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wait blocks until in-flight settlements finish or ctx ends.
func (l *Ledger) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("settlements still in flight: %w", ctx.Err())
	}
}
