package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/logger"
	"github.com/okian/esgbench/pkg/metrics"
)

// Data richness and insight quality parameters. These formulas are
// heuristics tuned for product framing, not rigorous estimators.
const (
	richnessSaturationPoints = 1000.0
	insightTierLarge         = 0.3 // >= 10 participants in an industry
	insightTierMedium        = 0.2 // >= 5
	insightTierSmall         = 0.1
)

// JoinNetwork registers an organization in the benchmarking network and
// returns its participation receipt.
func (s *Service) JoinNetwork(ctx context.Context, profile model.BenchmarkingProfile, privacy model.PrivacySettings) (model.JoinReceipt, error) {
	if profile.ParticipationLevel == "" {
		profile.ParticipationLevel = model.ParticipationBasic
	}
	if profile.JoinedAt.IsZero() {
		profile.JoinedAt = time.Now().UTC()
	}
	if err := s.profiles.Put(ctx, profile, privacy); err != nil {
		return model.JoinReceipt{}, fmt.Errorf("register profile: %w", err)
	}
	if s.journal != nil {
		if err := s.journal.SaveProfile(ctx, profile, privacy); err != nil {
			s.logger.Warn(ctx, "profile not journaled",
				logger.String("organization_id", profile.OrganizationID),
				logger.Error(err))
		}
	}

	effect := s.refreshNetworkEffect(ctx)
	s.logger.Info(ctx, "organization joined network",
		logger.String("industry", profile.Industry),
		logger.Int("participants", effect.ParticipantCount))

	return model.JoinReceipt{
		ProfileID:          uuid.NewString(),
		Benefits:           benefitsFor(profile.ParticipationLevel),
		ContributionImpact: effect,
	}, nil
}

// benefitsFor lists what each participation level unlocks.
func benefitsFor(level model.ParticipationLevel) []string {
	benefits := []string{
		"anonymous industry percentile rankings",
		"peer group comparisons within your size bucket",
	}
	switch level {
	case model.ParticipationStandard:
		benefits = append(benefits,
			"multi-year industry trend series",
			"improvement potential targets")
	case model.ParticipationPremium:
		benefits = append(benefits,
			"multi-year industry trend series",
			"improvement potential targets",
			"exportable benchmark reports",
			"leader cohort visibility")
	case model.ParticipationBasic:
	}
	return benefits
}

// NetworkEffects returns the last computed network health snapshot.
func (s *Service) NetworkEffects(_ context.Context) model.NetworkEffect {
	s.effectMu.RLock()
	defer s.effectMu.RUnlock()
	return s.lastEffect
}

// refreshNetworkEffect recomputes network health from the stores. It runs
// synchronously after every accepted ingestion batch and on join; a full
// aggregate scan is fine at expected scale.
func (s *Service) refreshNetworkEffect(ctx context.Context) model.NetworkEffect {
	total, verified := s.store.Counts(ctx)

	var richness float64
	if total > 0 {
		saturation := float64(total) / richnessSaturationPoints
		if saturation > 1 {
			saturation = 1
		}
		richness = float64(verified) / float64(total) * saturation
	}

	industries := s.profiles.Industries(ctx)
	var quality float64
	if len(industries) > 0 {
		var sum float64
		for _, participants := range industries {
			switch {
			case participants >= 10:
				sum += insightTierLarge
			case participants >= 5:
				sum += insightTierMedium
			default:
				sum += insightTierSmall
			}
		}
		quality = sum / float64(len(industries))
	}

	effect := model.NetworkEffect{
		ParticipantCount:        s.profiles.Count(ctx),
		DataRichness:            richness,
		InsightQuality:          quality,
		CollectiveLearningScore: (richness + quality) / 2,
	}

	s.effectMu.Lock()
	s.lastEffect = effect
	s.effectMu.Unlock()

	metrics.UpdatePointCounts(total, verified)
	metrics.UpdateNetworkEffect(effect.DataRichness, effect.InsightQuality, effect.CollectiveLearningScore)
	return effect
}
