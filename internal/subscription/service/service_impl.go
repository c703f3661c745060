package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/donare/internal/clock"
	"github.com/smallbiznis/donare/internal/explain"
	subscriptiondomain "github.com/smallbiznis/donare/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  subscriptiondomain.Repository

	explainSvc explain.Service
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  subscriptiondomain.Repository

	ExplainSvc explain.Service
}

func NewService(p Params) subscriptiondomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("subscription.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		explainSvc: p.ExplainSvc,
	}
}

// Create implements domain.Service. Campaign tags and summary are produced
// once here; billing later snapshots them into donation records.
func (s *Service) Create(ctx context.Context, req subscriptiondomain.CreateSubscriptionRequest) (subscriptiondomain.Subscription, error) {
	donorID := strings.TrimSpace(req.DonorID)

	interval := subscriptiondomain.BillingInterval(strings.ToLower(strings.TrimSpace(req.Interval)))
	now := s.clock.Now()
	nextDue, err := interval.Next(now)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	existing, err := s.repo.FindByDonorID(ctx, s.db, donorID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if existing != nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionExists
	}

	analysis := s.explainSvc.AnalyzeCampaign(ctx, req.CampaignDescription)

	sub := subscriptiondomain.Subscription{
		ID:                  s.genID.Generate(),
		DonorID:             donorID,
		Amount:              req.Amount,
		Currency:            req.Currency,
		Source:              req.Source,
		Email:               req.Email,
		Interval:            interval,
		CampaignDescription: req.CampaignDescription,
		CampaignTags:        analysis.Tags,
		CampaignSummary:     analysis.Summary,
		Status:              subscriptiondomain.SubscriptionStatusActive,
		CreatedAt:           now,
		NextDueAt:           nextDue,
	}
	if err := s.repo.Insert(ctx, s.db, &sub); err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	s.log.Info("subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("donor_id", sub.DonorID),
		zap.String("interval", string(sub.Interval)),
	)
	return sub, nil
}

// Cancel implements domain.Service.
func (s *Service) Cancel(ctx context.Context, donorID string) (subscriptiondomain.Subscription, error) {
	sub, err := s.repo.FindByDonorID(ctx, s.db, donorID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if sub == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotFound
	}
	if sub.Status == subscriptiondomain.SubscriptionStatusCancelled {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionCancelled
	}

	now := s.clock.Now()
	if err := s.repo.MarkCancelled(ctx, s.db, sub.ID, now); err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	sub.Status = subscriptiondomain.SubscriptionStatusCancelled
	sub.CancelledAt = &now

	s.log.Info("subscription cancelled",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("donor_id", sub.DonorID),
	)
	return *sub, nil
}

// GetByDonorID implements domain.Service.
func (s *Service) GetByDonorID(ctx context.Context, donorID string) (subscriptiondomain.Subscription, error) {
	sub, err := s.repo.FindByDonorID(ctx, s.db, donorID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if sub == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotFound
	}
	return *sub, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) ([]subscriptiondomain.Subscription, error) {
	return s.repo.List(ctx, s.db)
}

// ListDue implements domain.Service.
func (s *Service) ListDue(ctx context.Context, now time.Time) ([]subscriptiondomain.Subscription, error) {
	return s.repo.ListDue(ctx, s.db, now)
}

// MarkBilled implements domain.Service. The schedule advances from now on
// every outcome; only cancellation stops future attempts.
func (s *Service) MarkBilled(ctx context.Context, id snowflake.ID, success bool, now time.Time) error {
	sub := &subscriptiondomain.Subscription{}
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(sub).Error; err != nil {
		return err
	}
	nextDue, err := sub.Interval.Next(now)
	if err != nil {
		return err
	}
	if err := s.repo.IncrementOutcome(ctx, s.db, id, success); err != nil {
		return err
	}
	return s.repo.UpdateSchedule(ctx, s.db, id, now, nextDue)
}

// Stats implements domain.Service.
func (s *Service) Stats(ctx context.Context) (subscriptiondomain.Stats, error) {
	stats, err := s.repo.Aggregate(ctx, s.db)
	if err != nil {
		return subscriptiondomain.Stats{}, err
	}

	totalCharges := stats.SuccessCharges + stats.FailedCharges
	if totalCharges == 0 {
		stats.SuccessRate = "0%"
	} else {
		stats.SuccessRate = fmt.Sprintf("%.1f%%", float64(stats.SuccessCharges)/float64(totalCharges)*100)
	}
	return stats, nil
}
