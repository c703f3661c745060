// Package scheduler re-bills due subscriptions on a periodic tick. Due records
// are processed in sequential batches whose members run concurrently; a single
// subscription's failure or fault never aborts the batch or the tick.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/donare/internal/clock"
	donationdomain "github.com/smallbiznis/donare/internal/donation/domain"
	frauddomain "github.com/smallbiznis/donare/internal/fraud/domain"
	"github.com/smallbiznis/donare/internal/observability/metrics"
	subscriptiondomain "github.com/smallbiznis/donare/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var simulatedProviders = []frauddomain.PaymentProvider{
	frauddomain.ProviderStripe,
	frauddomain.ProviderPaypal,
}

type Params struct {
	fx.In

	Log             *zap.Logger
	Cfg             Config
	GenID           *snowflake.Node
	Clock           clock.Clock
	SubscriptionSvc subscriptiondomain.Service
	DonationSvc     donationdomain.Service
}

type Scheduler struct {
	log             *zap.Logger
	cfg             Config
	genID           *snowflake.Node
	clock           clock.Clock
	subscriptionSvc subscriptiondomain.Service
	donationSvc     donationdomain.Service

	// roll produces the billing outcome; pick the simulated provider.
	// Both are swapped in tests.
	roll func() float64
	pick func(n int) int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	nextRun time.Time
}

// Status describes the scheduler for the operational surface.
type Status struct {
	Running  bool       `json:"running"`
	Interval string     `json:"interval"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:             p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:             p.Cfg.withDefaults(),
		genID:           p.GenID,
		clock:           p.Clock,
		subscriptionSvc: p.SubscriptionSvc,
		donationSvc:     p.DonationSvc,
		roll:            rand.Float64,
		pick:            rand.Intn,
	}
}

// Start arms the periodic timer and runs an immediate due-check. Starting an
// already-running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.nextRun = s.clock.Now().Add(s.cfg.Interval)
	done := s.done
	s.mu.Unlock()

	s.log.Info("scheduler started", zap.Duration("interval", s.cfg.Interval))

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("scheduler run failed", zap.Error(err))
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				s.nextRun = s.clock.Now().Add(s.cfg.Interval)
				s.mu.Unlock()
			}
		}
	}()
}

// Stop disarms the timer. It does not cancel an in-flight tick's batch loop
// beyond the context handed to collaborators. Stopping twice is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.nextRun = time.Time{}
	s.mu.Unlock()

	cancel()
	s.log.Info("scheduler stopped")
}

// Running reports whether the timer is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status implements the billing-status surface.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:  s.running,
		Interval: s.cfg.Interval.String(),
	}
	if s.running {
		next := s.nextRun
		status.NextRun = &next
	}
	return status
}

// RunOnce performs one due-check. The manual operator trigger and the timer
// share this path.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()

	due, err := s.subscriptionSvc.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due subscriptions: %w", err)
	}

	metrics.IncSchedulerRun()
	if len(due) == 0 {
		return nil
	}
	s.log.Info("billing run", zap.Int("due", len(due)))

	// Batches are sequential relative to each other; members within a batch
	// run concurrently and independently.
	for start := 0; start < len(due); start += s.cfg.BatchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		end := min(start+s.cfg.BatchSize, len(due))

		g, batchCtx := errgroup.WithContext(ctx)
		for _, sub := range due[start:end] {
			g.Go(func() error {
				s.billSubscription(batchCtx, sub)
				return nil
			})
		}
		_ = g.Wait()
	}

	return nil
}

// billSubscription simulates one billing attempt. Every exit path, success,
// simulated decline, or recovered fault, appends a donation record and
// advances the subscription's schedule.
func (s *Scheduler) billSubscription(ctx context.Context, sub subscriptiondomain.Subscription) {
	now := s.clock.Now()

	defer func() {
		if r := recover(); r != nil {
			faultMsg := fmt.Sprintf("internal error: %v", r)
			s.log.Error("billing fault",
				zap.String("donor_id", sub.DonorID),
				zap.String("fault", faultMsg),
			)
			s.recordOutcome(ctx, sub, false, donationdomain.ProviderUnknown, &faultMsg, now)
		}
	}()

	success := false
	provider := string(simulatedProviders[s.pick(len(simulatedProviders))])
	var errMessage *string

	// Simulated processor latency; the suspension point of a billing attempt.
	if s.cfg.BillingDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(s.cfg.BillingDelay):
		}
	}

	if s.roll() < s.cfg.SuccessProbability {
		success = true
	} else {
		msg := fmt.Sprintf("charge declined by %s", provider)
		errMessage = &msg
	}

	s.recordOutcome(ctx, sub, success, provider, errMessage, now)
}

func (s *Scheduler) recordOutcome(ctx context.Context, sub subscriptiondomain.Subscription, success bool, provider string, errMessage *string, now time.Time) {
	status := donationdomain.DonationStatusFailed
	if success {
		status = donationdomain.DonationStatusSuccess
	}

	donation := &donationdomain.DonationTransaction{
		ID:              s.genID.Generate(),
		DonorID:         sub.DonorID,
		Amount:          sub.Amount,
		Currency:        sub.Currency,
		Status:          status,
		Provider:        provider,
		ErrorMessage:    errMessage,
		CampaignTags:    append([]string(nil), sub.CampaignTags...),
		CampaignSummary: sub.CampaignSummary,
		CreatedAt:       now,
	}
	if err := s.donationSvc.Append(ctx, donation); err != nil {
		s.log.Error("append donation record failed",
			zap.String("donor_id", sub.DonorID),
			zap.Error(err),
		)
	}

	if err := s.subscriptionSvc.MarkBilled(ctx, sub.ID, success, now); err != nil {
		s.log.Error("update billing schedule failed",
			zap.String("donor_id", sub.DonorID),
			zap.Error(err),
		)
	}

	metrics.IncBillingOutcome(string(status))
	s.log.Info("subscription billed",
		zap.String("donor_id", sub.DonorID),
		zap.String("status", string(status)),
		zap.String("provider", provider),
	)
}
