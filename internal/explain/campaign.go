package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallbiznis/donare/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	minCampaignTags = 2
	maxCampaignTags = 5
)

// AnalysisSource records which branch produced the stored value.
type AnalysisSource string

const (
	SourceGenerated AnalysisSource = "generated"
	SourceFallback  AnalysisSource = "fallback"
)

// CampaignAnalysis is the validated result of analyzing a campaign description.
type CampaignAnalysis struct {
	Tags    []string       `json:"tags"`
	Summary string         `json:"summary"`
	Source  AnalysisSource `json:"source"`
}

var genericTags = []string{"community-support", "charitable-giving"}

var tagKeywords = map[string]string{
	"school":    "education",
	"education": "education",
	"student":   "education",
	"health":    "health",
	"medical":   "health",
	"hospital":  "health",
	"child":     "children",
	"children":  "children",
	"youth":     "children",
	"climate":   "environment",
	"forest":    "environment",
	"ocean":     "environment",
	"water":     "clean-water",
	"well":      "clean-water",
	"food":      "food-security",
	"hunger":    "food-security",
	"meal":      "food-security",
	"emergency": "disaster-relief",
	"disaster":  "disaster-relief",
	"relief":    "disaster-relief",
	"animal":    "animal-welfare",
	"shelter":   "housing",
	"housing":   "housing",
	"research":  "research",
}

// AnalyzeCampaign implements Service. The cache key is the case-folded,
// whitespace-collapsed description, so trivially different spellings of the
// same campaign share one analysis.
func (s *service) AnalyzeCampaign(ctx context.Context, description string) CampaignAnalysis {
	key := normalizeDescription(description)

	if analysis, ok := s.campaigns.Get(key); ok {
		metrics.IncCacheLookup("campaign", true)
		return analysis
	}
	metrics.IncCacheLookup("campaign", false)

	analysis := s.generateAnalysis(ctx, description)
	s.campaigns.Add(key, analysis)
	return analysis
}

func (s *service) generateAnalysis(ctx context.Context, description string) CampaignAnalysis {
	raw, err := s.provider.Generate(ctx, campaignPrompt(description), s.maxTokens)
	if err == nil {
		if analysis, ok := parseCampaignReply(raw); ok {
			return analysis
		}
		s.log.Debug("campaign analysis unparseable, using fallback")
	} else {
		s.log.Debug("campaign analysis fallback", zap.Error(err))
	}
	return fallbackAnalysis(description)
}

func campaignPrompt(description string) string {
	return fmt.Sprintf(
		`Analyze this donation campaign description and reply with JSON only, shaped as {"tags": ["..."], "summary": "..."} with 2 to 5 short lowercase tags and a one-sentence summary. Description: %s`,
		strings.TrimSpace(description),
	)
}

// parseCampaignReply is the tagged-variant parse of collaborator output: either
// a well-formed JSON analysis that validates, or a signal to fall back. No
// partially sanitized value is ever stored.
func parseCampaignReply(raw string) (CampaignAnalysis, bool) {
	raw = strings.TrimSpace(raw)
	// Models wrap JSON in fences often enough to be worth stripping.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed struct {
		Tags    []string `json:"tags"`
		Summary string   `json:"summary"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return CampaignAnalysis{}, false
	}

	tags := make([]string, 0, len(parsed.Tags))
	for _, tag := range parsed.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	summary := strings.TrimSpace(parsed.Summary)
	if len(tags) < minCampaignTags || summary == "" {
		return CampaignAnalysis{}, false
	}
	if len(tags) > maxCampaignTags {
		tags = tags[:maxCampaignTags]
	}
	return CampaignAnalysis{Tags: tags, Summary: summary, Source: SourceGenerated}, true
}

// fallbackAnalysis tags by keyword match, padding with generic tags up to the
// two-tag minimum and truncating at five.
func fallbackAnalysis(description string) CampaignAnalysis {
	normalized := normalizeDescription(description)

	seen := make(map[string]bool)
	tags := make([]string, 0, maxCampaignTags)
	for _, word := range strings.Fields(normalized) {
		word = strings.Trim(word, ".,!?;:\"'()")
		tag, ok := tagKeywords[word]
		if !ok || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxCampaignTags {
			break
		}
	}
	for _, tag := range genericTags {
		if len(tags) >= minCampaignTags {
			break
		}
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	summary := strings.TrimSpace(description)
	if summary == "" {
		summary = "A donation campaign."
	} else if len(summary) > 140 {
		summary = summary[:140] + "..."
	}
	return CampaignAnalysis{
		Tags:    tags,
		Summary: fmt.Sprintf("Campaign supporting: %s", summary),
		Source:  SourceFallback,
	}
}

func normalizeDescription(description string) string {
	return strings.Join(strings.Fields(strings.ToLower(description)), " ")
}
