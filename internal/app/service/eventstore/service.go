package eventstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/paygate/internal/models"
	"github.com/fatflowers/paygate/internal/platform/db"
	"github.com/fatflowers/paygate/pkg/logctx"
)

var (
	ErrAlreadyExists = errors.New("payment event already exists")
	ErrNotFound      = errors.New("payment event not found")
)

// Store is the durable, append-only log of payment events.
type Store interface {
	// InsertInitiated appends an initiated event. A second insert for the
	// same payment id returns ErrAlreadyExists and changes nothing.
	InsertInitiated(ctx context.Context, ev *models.PaymentInitiatedEvent) error
	// InsertSettled appends the terminal event of a payment.
	InsertSettled(ctx context.Context, ev *models.PaymentSettledEvent) error
	// GetSettled returns the initiated event of a settled payment with Settled populated.
	// Payments that are unknown or not yet settled return ErrNotFound.
	GetSettled(ctx context.Context, paymentID uuid.UUID) (*models.PaymentInitiatedEvent, error)
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

func (s *Service) InsertInitiated(ctx context.Context, ev *models.PaymentInitiatedEvent) error {
	if ev == nil || ev.PaymentID == uuid.Nil {
		return errors.New("initiated event requires a payment id")
	}
	if ev.TraceID == "" {
		ev.TraceID = logctx.TraceID(ctx)
	}
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(ev).Error
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, ev.PaymentID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert initiated event: %w", err)
	}
	return nil
}

func (s *Service) InsertSettled(ctx context.Context, ev *models.PaymentSettledEvent) error {
	if ev == nil || ev.PaymentID == uuid.Nil {
		return errors.New("settled event requires a payment id")
	}
	if !ev.Status.IsTerminal() {
		return fmt.Errorf("settled event requires a terminal status, got %q", ev.Status)
	}
	err := s.db.WithContext(ctx).Create(ev).Error
	if db.IsUniqueViolation(err) {
		logctx.FromCtx(ctx, s.log).Errorw("payment settled twice", "payment_id", ev.PaymentID)
		return fmt.Errorf("%w: %s", ErrAlreadyExists, ev.PaymentID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert settled event: %w", err)
	}
	return nil
}

func (s *Service) GetSettled(ctx context.Context, paymentID uuid.UUID) (*models.PaymentInitiatedEvent, error) {
	var ev models.PaymentInitiatedEvent
	err := s.db.WithContext(ctx).
		Preload("Settled").
		Where("payment_id = ?", paymentID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, paymentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment events: %w", err)
	}
	if ev.Settled == nil {
		return nil, fmt.Errorf("%w: %s not settled", ErrNotFound, paymentID)
	}
	return &ev, nil
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(s *Service) Store { return s },
	),
)
