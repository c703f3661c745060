// Package explain memoizes the human-readable text the service attaches to
// decisions. Two independent caches: one keyed by a decision fingerprint, one
// keyed by a normalized campaign description.
package explain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/smallbiznis/donare/internal/config"
	frauddomain "github.com/smallbiznis/donare/internal/fraud/domain"
	"github.com/smallbiznis/donare/internal/observability/metrics"
	"github.com/smallbiznis/donare/internal/providers/textgen"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const cacheSize = 1024

type Service interface {
	// ExplainDecision returns explanation text for a decision. Identical
	// (provider, rounded score, reason set) tuples always yield identical text.
	ExplainDecision(ctx context.Context, provider *frauddomain.PaymentProvider, score float64, reasons []string) string
	// AnalyzeCampaign produces tags and a summary for a campaign description.
	AnalyzeCampaign(ctx context.Context, description string) CampaignAnalysis
}

type service struct {
	log       *zap.Logger
	provider  textgen.Provider
	maxTokens int

	decisions *lru.Cache[string, string]
	campaigns *lru.Cache[string, CampaignAnalysis]
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	Provider textgen.Provider
}

func NewService(p Params) (Service, error) {
	decisions, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	campaigns, err := lru.New[string, CampaignAnalysis](cacheSize)
	if err != nil {
		return nil, err
	}
	return &service{
		log:       p.Log.Named("explain.service"),
		provider:  p.Provider,
		maxTokens: p.Cfg.Textgen.MaxTokens,
		decisions: decisions,
		campaigns: campaigns,
	}, nil
}

// ExplainDecision implements Service. Whatever text is produced, collaborator
// or fallback, is stored under the fingerprint before returning so a failed
// call is not retried for the same decision this run.
func (s *service) ExplainDecision(ctx context.Context, provider *frauddomain.PaymentProvider, score float64, reasons []string) string {
	key := Fingerprint(provider, score, reasons)

	if text, ok := s.decisions.Get(key); ok {
		metrics.IncCacheLookup("decision", true)
		return text
	}
	metrics.IncCacheLookup("decision", false)

	text, err := s.provider.Generate(ctx, decisionPrompt(score, reasons), s.maxTokens)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			s.log.Debug("explanation fallback", zap.Error(err))
		}
		text = fallbackExplanation(score, reasons)
	}
	text = strings.TrimSpace(text)

	s.decisions.Add(key, text)
	return text
}

// Fingerprint derives the cache key from provider identity (or its absence),
// the score rounded to two decimals, and the reasons sorted lexicographically.
func Fingerprint(provider *frauddomain.PaymentProvider, score float64, reasons []string) string {
	name := "none"
	if provider != nil {
		name = string(*provider)
	}
	sorted := append([]string(nil), reasons...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s|%.2f|%s", name, score, strings.Join(sorted, ","))
}

func decisionPrompt(score float64, reasons []string) string {
	var sb strings.Builder
	sb.WriteString("You write one-sentence explanations for a donation platform's fraud screening. ")
	fmt.Fprintf(&sb, "A transaction received a risk score of %.2f. ", score)
	if len(reasons) == 0 {
		sb.WriteString("No risk heuristics were triggered. ")
	} else {
		sb.WriteString("Triggered heuristics: ")
		sb.WriteString(strings.Join(reasons, ", "))
		sb.WriteString(". ")
	}
	sb.WriteString("Explain the decision to a support agent in plain language. Reply with the sentence only.")
	return sb.String()
}

// fallbackExplanation is the deterministic template used when the collaborator
// is unavailable or returns nothing usable.
func fallbackExplanation(score float64, reasons []string) string {
	if len(reasons) == 0 {
		return fmt.Sprintf("Transaction accepted with a low risk score of %.2f; no risk heuristics were triggered.", score)
	}
	labels := make([]string, 0, len(reasons))
	for _, r := range reasons {
		labels = append(labels, strings.ReplaceAll(r, "_", " "))
	}
	return fmt.Sprintf("Transaction scored %.2f due to: %s.", score, strings.Join(labels, ", "))
}
