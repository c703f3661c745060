package service

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/smallbiznis/donare/internal/config"
	frauddomain "github.com/smallbiznis/donare/internal/fraud/domain"
	transactiondomain "github.com/smallbiznis/donare/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var providers = []frauddomain.PaymentProvider{
	frauddomain.ProviderStripe,
	frauddomain.ProviderPaypal,
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	cfg  config.RiskConfig
	repo transactiondomain.Repository

	// pick selects the routing provider for accepted charges; swapped in tests.
	pick func(n int) int
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Cfg  config.RiskConfig
	Repo transactiondomain.Repository
}

func NewService(p Params) frauddomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("fraud.service"),
		cfg:  p.Cfg,
		repo: p.Repo,
		pick: rand.Intn,
	}
}

// Assess implements domain.Service.
func (s *Service) Assess(ctx context.Context, charge frauddomain.ChargeContext, now time.Time) (frauddomain.Assessment, error) {
	recent, err := s.recentChargeCount(ctx, charge.Email, now)
	if err != nil {
		return frauddomain.Assessment{}, err
	}

	score, reasons := s.score(charge, recent)

	assessment := frauddomain.Assessment{
		Score:   score,
		Reasons: reasons,
		Blocked: score >= s.cfg.BlockThreshold,
	}
	if !assessment.Blocked {
		provider := providers[s.pick(len(providers))]
		assessment.Provider = &provider
	}

	s.log.Debug("charge assessed",
		zap.Float64("score", assessment.Score),
		zap.Strings("reasons", assessment.Reasons),
		zap.Bool("blocked", assessment.Blocked),
	)
	return assessment, nil
}

// score applies the rule set in fixed order, summing configured increments on
// top of the base score and clamping to [0,1].
func (s *Service) score(charge frauddomain.ChargeContext, recentCharges int64) (float64, []string) {
	score := s.cfg.BaseScore
	reasons := make([]string, 0, 5)

	if charge.Amount > s.cfg.AmountThreshold {
		score += s.cfg.AmountIncrement
		reasons = append(reasons, frauddomain.ReasonLargeAmount)
	}
	if s.suspiciousDomain(charge.Email) {
		score += s.cfg.DomainIncrement
		reasons = append(reasons, frauddomain.ReasonSuspiciousDomain)
	}
	if recentCharges >= int64(s.cfg.VelocityThreshold) {
		score += s.cfg.VelocityIncrement
		reasons = append(reasons, frauddomain.ReasonHighVelocity)
	}
	if charge.IPCountry != "" && charge.BillingCountry != "" && charge.IPCountry != charge.BillingCountry {
		score += s.cfg.GeoIncrement
		reasons = append(reasons, frauddomain.ReasonGeoMismatch)
	}
	// Additive on top of the geolocation rule, not exclusive with it.
	if s.cfg.HighRiskCountry != "" && charge.IPCountry == s.cfg.HighRiskCountry {
		score += s.cfg.HighRiskIncrement
		reasons = append(reasons, frauddomain.ReasonHighRiskCountry)
	}

	return round2(clamp01(score)), reasons
}

// recentChargeCount is the velocity signal: an exact count of the identity's
// ledger entries inside the sliding window [now-window, now].
func (s *Service) recentChargeCount(ctx context.Context, email string, now time.Time) (int64, error) {
	since := now.Add(-s.cfg.VelocityWindow)
	return s.repo.CountByEmailSince(ctx, s.db, email, since, now)
}

func (s *Service) suspiciousDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])

	for _, entry := range s.cfg.SuspiciousDomains {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, ".") {
			// Leading-dot wildcard: ".ru" matches any domain under ru.
			if strings.HasSuffix(domain, entry) || domain == strings.TrimPrefix(entry, ".") {
				return true
			}
			continue
		}
		if domain == entry || strings.HasSuffix(domain, "."+entry) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
