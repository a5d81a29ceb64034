package merchant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/paygate/internal/models"
	"github.com/fatflowers/paygate/pkg/config"
)

var ErrNotFound = errors.New("merchant not found")

// Lookup resolves merchants by id.
type Lookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	var m models.Merchant
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &m, nil
}

// Seed upserts the configured merchants. Existing rows take the configured bank details.
func (s *Service) Seed(ctx context.Context, merchants []*config.MerchantConfig) error {
	if len(merchants) == 0 {
		return nil
	}
	rows := make([]*models.Merchant, 0, len(merchants))
	for _, m := range merchants {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return fmt.Errorf("invalid merchant id %q: %w", m.ID, err)
		}
		rows = append(rows, &models.Merchant{
			ID:                 id,
			BankAccountNumber:  m.BankAccountNumber,
			BankIdentifierCode: m.BankIdentifierCode,
		})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"bank_account_number", "bank_identifier_code", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to seed merchants: %w", err)
	}
	s.log.Infow("merchants seeded", "merchant_ids", lo.Map(rows, func(m *models.Merchant, _ int) string { return m.ID.String() }))
	return nil
}

func seedOnStart(lc fx.Lifecycle, s *Service, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Seed(ctx, cfg.Merchants)
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		NewService,
		func(s *Service) Lookup { return s },
	),
	fx.Invoke(seedOnStart),
)
