package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/donare/internal/clock"
	"github.com/smallbiznis/donare/internal/explain"
	frauddomain "github.com/smallbiznis/donare/internal/fraud/domain"
	"github.com/smallbiznis/donare/internal/observability/metrics"
	transactiondomain "github.com/smallbiznis/donare/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  transactiondomain.Repository

	fraudSvc   frauddomain.Service
	explainSvc explain.Service
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  transactiondomain.Repository

	FraudSvc   frauddomain.Service
	ExplainSvc explain.Service
}

func NewService(p Params) transactiondomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("transaction.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		fraudSvc:   p.FraudSvc,
		explainSvc: p.ExplainSvc,
	}
}

// Charge implements domain.Service. The assessment is computed first, the
// explanation memoized, and only then is the outcome appended to the ledger,
// so ledger order is completion order.
func (s *Service) Charge(ctx context.Context, req transactiondomain.CreateChargeRequest) (transactiondomain.Transaction, error) {
	now := s.clock.Now()

	assessment, err := s.fraudSvc.Assess(ctx, frauddomain.ChargeContext{
		Amount:         req.Amount,
		Email:          req.Email,
		IPCountry:      req.IPCountry,
		BillingCountry: req.BillingCountry,
	}, now)
	if err != nil {
		return transactiondomain.Transaction{}, err
	}

	explanation := s.explainSvc.ExplainDecision(ctx, assessment.Provider, assessment.Score, assessment.Reasons)

	tx := transactiondomain.Transaction{
		ID:          s.genID.Generate(),
		Status:      transactiondomain.TransactionStatusSuccess,
		RiskScore:   assessment.Score,
		Explanation: explanation,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Email:       req.Email,
		CreatedAt:   now,
	}
	if assessment.Blocked {
		tx.Status = transactiondomain.TransactionStatusBlocked
	} else if assessment.Provider != nil {
		provider := string(*assessment.Provider)
		tx.Provider = &provider
	}

	if err := s.repo.Insert(ctx, s.db, &tx); err != nil {
		return transactiondomain.Transaction{}, err
	}

	metrics.IncCharge(string(tx.Status))
	s.log.Info("charge processed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("status", string(tx.Status)),
		zap.Float64("risk_score", tx.RiskScore),
	)
	return tx, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) ([]transactiondomain.Transaction, error) {
	return s.repo.List(ctx, s.db)
}
