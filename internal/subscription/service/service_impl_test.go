package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/donare/internal/clock"
	"github.com/smallbiznis/donare/internal/explain"
	frauddomain "github.com/smallbiznis/donare/internal/fraud/domain"
	"github.com/smallbiznis/donare/internal/migration"
	subscriptiondomain "github.com/smallbiznis/donare/internal/subscription/domain"
	"github.com/smallbiznis/donare/internal/subscription/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_subscription_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// staticAnalyzer stands in for the explanation service with fixed output.
type staticAnalyzer struct{}

func (staticAnalyzer) ExplainDecision(ctx context.Context, provider *frauddomain.PaymentProvider, score float64, reasons []string) string {
	return "explained"
}

func (staticAnalyzer) AnalyzeCampaign(ctx context.Context, description string) explain.CampaignAnalysis {
	return explain.CampaignAnalysis{
		Tags:    []string{"community-support", "charitable-giving"},
		Summary: "Campaign supporting: " + description,
		Source:  explain.SourceFallback,
	}
}

func newTestService(t *testing.T) (*Service, *clock.FakeClock) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))

	return &Service{
		db:         setupTestDB(t),
		log:        zap.NewNop(),
		genID:      node,
		clock:      fake,
		repo:       repository.Provide(),
		explainSvc: staticAnalyzer{},
	}, fake
}

func createRequest(donorID, interval string) subscriptiondomain.CreateSubscriptionRequest {
	return subscriptiondomain.CreateSubscriptionRequest{
		DonorID:             donorID,
		Amount:              25,
		Currency:            "usd",
		Source:              "tok_visa",
		Email:               donorID + "@example.com",
		Interval:            interval,
		CampaignDescription: "Clean water wells",
	}
}

func TestCreateSubscription(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, createRequest("donor-1", "monthly"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if sub.Status != subscriptiondomain.SubscriptionStatusActive {
		t.Fatalf("expected active, got %s", sub.Status)
	}
	wantDue := fake.Now().AddDate(0, 1, 0)
	if !sub.NextDueAt.Equal(wantDue) {
		t.Fatalf("expected next due %v, got %v", wantDue, sub.NextDueAt)
	}
	if sub.LastBilledAt != nil {
		t.Fatal("a new subscription has never been billed")
	}
	if len(sub.CampaignTags) != 2 || sub.CampaignSummary == "" {
		t.Fatalf("expected campaign analysis on creation, got tags=%v summary=%q", sub.CampaignTags, sub.CampaignSummary)
	}
}

func TestCreateSubscriptionNormalizesInterval(t *testing.T) {
	svc, fake := newTestService(t)

	sub, err := svc.Create(context.Background(), createRequest("donor-1", "  Weekly "))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.Interval != subscriptiondomain.IntervalWeekly {
		t.Fatalf("expected weekly, got %s", sub.Interval)
	}
	if !sub.NextDueAt.Equal(fake.Now().AddDate(0, 0, 7)) {
		t.Fatalf("unexpected next due %v", sub.NextDueAt)
	}
}

func TestCreateSubscriptionRejectsUnknownInterval(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createRequest("donor-1", "daily"))
	if !errors.Is(err, subscriptiondomain.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}

	// The failed create must leave no partial record behind.
	subs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected empty store, got %d records", len(subs))
	}
}

func TestCreateSubscriptionDuplicateDonor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	original, err := svc.Create(ctx, createRequest("donor-1", "monthly"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Create(ctx, createRequest("donor-1", "yearly"))
	if !errors.Is(err, subscriptiondomain.ErrSubscriptionExists) {
		t.Fatalf("expected ErrSubscriptionExists, got %v", err)
	}

	// The original is unchanged by the rejected attempt.
	got, err := svc.GetByDonorID(ctx, "donor-1")
	if err != nil {
		t.Fatalf("GetByDonorID: %v", err)
	}
	if got.Interval != original.Interval || got.ID != original.ID {
		t.Fatalf("original subscription mutated: %+v", got)
	}
}

func TestCancelSubscription(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, createRequest("donor-1", "monthly")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	fake.Advance(time.Hour)

	sub, err := svc.Cancel(ctx, "donor-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if sub.Status != subscriptiondomain.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", sub.Status)
	}
	if sub.CancelledAt == nil || !sub.CancelledAt.Equal(fake.Now()) {
		t.Fatalf("expected cancellation timestamp %v, got %v", fake.Now(), sub.CancelledAt)
	}

	if _, err := svc.Cancel(ctx, "donor-1"); !errors.Is(err, subscriptiondomain.ErrSubscriptionCancelled) {
		t.Fatalf("expected ErrSubscriptionCancelled, got %v", err)
	}
}

func TestCancelUnknownDonor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Cancel(context.Background(), "nobody")
	if !errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestListDueSkipsCancelledAndFuture(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, createRequest("due-donor", "weekly")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, createRequest("cancelled-donor", "weekly")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, createRequest("future-donor", "yearly")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(ctx, "cancelled-donor"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	fake.Advance(8 * 24 * time.Hour)
	due, err := svc.ListDue(ctx, fake.Now())
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 1 || due[0].DonorID != "due-donor" {
		t.Fatalf("expected only due-donor, got %+v", due)
	}
}

func TestMarkBilledAdvancesScheduleOnEveryOutcome(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, createRequest("donor-1", "monthly"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fake.Advance(31 * 24 * time.Hour)
	billedAt := fake.Now()
	if err := svc.MarkBilled(ctx, sub.ID, false, billedAt); err != nil {
		t.Fatalf("MarkBilled: %v", err)
	}

	got, err := svc.GetByDonorID(ctx, "donor-1")
	if err != nil {
		t.Fatalf("GetByDonorID: %v", err)
	}
	if got.FailureCount != 1 || got.SuccessCount != 0 {
		t.Fatalf("expected one failure, got success=%d failure=%d", got.SuccessCount, got.FailureCount)
	}
	// A failed cycle still advances the schedule from the attempt time.
	if got.LastBilledAt == nil || !got.LastBilledAt.Equal(billedAt) {
		t.Fatalf("expected last billed %v, got %v", billedAt, got.LastBilledAt)
	}
	if !got.NextDueAt.Equal(billedAt.AddDate(0, 1, 0)) {
		t.Fatalf("expected next due %v, got %v", billedAt.AddDate(0, 1, 0), got.NextDueAt)
	}

	if err := svc.MarkBilled(ctx, sub.ID, true, billedAt); err != nil {
		t.Fatalf("MarkBilled: %v", err)
	}
	got, err = svc.GetByDonorID(ctx, "donor-1")
	if err != nil {
		t.Fatalf("GetByDonorID: %v", err)
	}
	if got.SuccessCount != 1 || got.FailureCount != 1 {
		t.Fatalf("expected one success and one failure, got success=%d failure=%d", got.SuccessCount, got.FailureCount)
	}
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if empty.SuccessRate != "0%" {
		t.Fatalf("expected 0%% rate with no charges, got %q", empty.SuccessRate)
	}

	a, err := svc.Create(ctx, createRequest("donor-1", "monthly"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, createRequest("donor-2", "weekly")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(ctx, "donor-2"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	now := time.Now().UTC()
	for _, success := range []bool{true, true, true, false} {
		if err := svc.MarkBilled(ctx, a.ID, success, now); err != nil {
			t.Fatalf("MarkBilled: %v", err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Active != 1 || stats.Cancelled != 1 {
		t.Fatalf("unexpected population counts: %+v", stats)
	}
	if stats.ActiveAmount != 25 {
		t.Fatalf("expected active amount 25, got %v", stats.ActiveAmount)
	}
	if stats.SuccessCharges != 3 || stats.FailedCharges != 1 {
		t.Fatalf("unexpected charge counts: %+v", stats)
	}
	if stats.SuccessRate != "75.0%" {
		t.Fatalf("expected 75.0%% rate, got %q", stats.SuccessRate)
	}
}
