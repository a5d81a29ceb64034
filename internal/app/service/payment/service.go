package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fatflowers/paygate/internal/app/service/eventstore"
	"github.com/fatflowers/paygate/internal/app/service/merchant"
	"github.com/fatflowers/paygate/internal/models"
	"github.com/fatflowers/paygate/internal/platform/acquiring_bank"
	"github.com/fatflowers/paygate/pkg/config"
	"github.com/fatflowers/paygate/pkg/logctx"
	"github.com/fatflowers/paygate/pkg/tool"
	types "github.com/fatflowers/paygate/pkg/types"
)

const storeReadTimeout = 5 * time.Second

type Service struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	merchants merchant.Lookup
	store     eventstore.Store
	bank      acquiring_bank.Client
	secret    []byte

	// tasks holds a *settlementTask per payment settled by this process.
	tasks    sync.Map
	reads    singleflight.Group
	inflight sync.WaitGroup

	settlementTimeout time.Duration
	taskRetention     time.Duration
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, merchants merchant.Lookup, store eventstore.Store, bank acquiring_bank.Client) *Service {
	return &Service{
		cfg:               cfg,
		log:               log,
		merchants:         merchants,
		store:             store,
		bank:              bank,
		secret:            cfg.IdentitySecret(),
		settlementTimeout: cfg.Payment.SettlementTimeout,
		taskRetention:     cfg.Payment.TaskRetention,
	}
}

func (s *Service) MakePayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentAcceptedResponse, error) {
	if req == nil {
		return nil, errors.New("nil payment request")
	}
	m, err := s.merchants.Get(ctx, req.MerchantID)
	if errors.Is(err, merchant.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMerchantNotFound, req.MerchantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}

	paymentID := tool.DeterministicID(s.secret, m.ID, req.IdempotencyID.String())
	log := logctx.FromCtx(ctx, s.log).With("payment_id", paymentID, "merchant_id", m.ID)
	accepted := &types.PaymentAcceptedResponse{
		PaymentID: paymentID,
		Location:  "/payments/" + paymentID.String(),
	}

	ev := &models.PaymentInitiatedEvent{
		PaymentID:                paymentID,
		MerchantID:               m.ID,
		Amount:                   req.Value.Amount,
		Currency:                 req.Value.Currency,
		SenderCardLastFourDigits: tool.LastFourDigits(req.CardNumber),
		PaymentReference:         tool.PaymentReference(s.secret, paymentID),
	}
	err = s.store.InsertInitiated(ctx, ev)
	if errors.Is(err, eventstore.ErrAlreadyExists) {
		log.Warnw("duplicate payment request")
		return accepted, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	txReq := &types.TransactionRequest{
		RecipientBankAccountNumber:  m.BankAccountNumber,
		RecipientBankIdentifierCode: m.BankIdentifierCode,
		PaymentReference:            ev.PaymentReference,
		SenderCardNumber:            req.CardNumber,
		SenderName:                  req.Name,
		SenderCardExpiryDate:        req.CardExpiryDate,
		SenderCardVerificationValue: req.CardVerificationValue,
		CurrencyCode:                req.Value.Currency,
		Amount:                      req.Value.Amount,
	}
	if err := s.startSettlement(ctx, log, ev, txReq); err != nil {
		log.Errorw("failed to start settlement", "err", err)
		return nil, err
	}
	log.Infow("payment accepted", "amount", ev.Amount, "currency", ev.Currency)
	return accepted, nil
}

func (s *Service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*types.PaymentProcessedResponse, error) {
	if res, ok, err := s.awaitTask(ctx, paymentID); ok {
		return res, err
	}
	res, err := s.readSettled(ctx, paymentID)
	if errors.Is(err, ErrPaymentNotFound) {
		// the settlement may have been registered after the first check
		if res, ok, err := s.awaitTask(ctx, paymentID); ok {
			return res, err
		}
	}
	return res, err
}

func (s *Service) readSettled(ctx context.Context, paymentID uuid.UUID) (*types.PaymentProcessedResponse, error) {
	ch := s.reads.DoChan(paymentID.String(), func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeReadTimeout)
		defer cancel()
		ev, err := s.store.GetSettled(rctx, paymentID)
		if errors.Is(err, eventstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read payment: %w", err)
		}
		return processedResponse(ev, ev.Settled.Status), nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*types.PaymentProcessedResponse)
		return &res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain waits for settlements started by this process.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("settlements still in flight: %w", ctx.Err())
	}
}

func processedResponse(ev *models.PaymentInitiatedEvent, status types.TransactionStatus) *types.PaymentProcessedResponse {
	return &types.PaymentProcessedResponse{
		PaymentID:                ev.PaymentID,
		Status:                   status,
		SenderCardLastFourDigits: ev.SenderCardLastFourDigits,
		PaymentReference:         ev.PaymentReference,
	}
}
