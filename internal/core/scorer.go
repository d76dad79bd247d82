package core

import (
	"fmt"
	"math"
	"strings"
)

// TrustChecker reports whether an address belongs to an institutional
// (trusted) domain
type TrustChecker interface {
	IsTrusted(address string) bool
}

// Scoring constants. Thresholds are fixed so that scores stay comparable
// across runs; only the category weight table is configurable.
const (
	nonViolationCeiling  = 10.0
	participantIncrement = 2.0
	participantBonusCap  = 10.0
	externalIncrement    = 15.0
	maxRiskScore         = 100.0

	tierMediumThreshold   = 25.0
	tierHighThreshold     = 50.0
	tierCriticalThreshold = 75.0
)

// RiskScorer deterministically maps a classification and participant
// metadata to a risk score and tier. Score is a pure function: identical
// inputs always produce the identical assessment.
type RiskScorer struct {
	weights map[string]float64
	trust   TrustChecker
}

// NewRiskScorer creates a scorer from a category weight table. Category
// lookup is case-insensitive.
func NewRiskScorer(weights map[string]float64, trust TrustChecker) *RiskScorer {
	normalized := make(map[string]float64, len(weights))
	for category, weight := range weights {
		normalized[strings.ToLower(strings.TrimSpace(category))] = weight
	}
	return &RiskScorer{
		weights: normalized,
		trust:   trust,
	}
}

// Score computes the risk assessment for a classification and the email's
// participants (sender first, then recipients). A category missing from
// the weight table fails loud with ErrUnknownCategory rather than
// defaulting to a guessed weight, which would silently mis-rank alerts.
func (s *RiskScorer) Score(classification *Classification, participants []string) (*RiskAssessment, error) {
	category := strings.ToLower(strings.TrimSpace(classification.Category))
	base, ok := s.weights[category]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", classification.Category, ErrUnknownCategory)
	}

	factors := []Factor{{Name: "category:" + category, Weight: base}}
	score := base

	if bonus := s.participantBonus(participants); bonus > 0 {
		factors = append(factors, Factor{Name: "participant_count", Weight: bonus})
		score += bonus
	}

	if s.hasExternalParticipant(participants) {
		factors = append(factors, Factor{Name: "external_participant", Weight: externalIncrement})
		score += externalIncrement
	}

	// Non-violations cap at the ceiling; violations floor at it, so a
	// confirmed violation never ranks below a capped non-violation.
	if classification.Violation {
		score = math.Max(score, nonViolationCeiling)
	} else {
		score = math.Min(score, nonViolationCeiling)
	}
	score = math.Max(0, math.Min(score, maxRiskScore))

	return &RiskAssessment{
		Score:   score,
		Tier:    tierFor(score),
		Factors: factors,
	}, nil
}

// participantBonus adds a bounded increment per participant beyond the
// first: wide distribution raises exposure
func (s *RiskScorer) participantBonus(participants []string) float64 {
	extra := len(participants) - 1
	if extra <= 0 {
		return 0
	}
	return math.Min(float64(extra)*participantIncrement, participantBonusCap)
}

func (s *RiskScorer) hasExternalParticipant(participants []string) bool {
	if s.trust == nil {
		return false
	}
	for _, addr := range participants {
		if !s.trust.IsTrusted(addr) {
			return true
		}
	}
	return false
}

func tierFor(score float64) RiskTier {
	switch {
	case score < tierMediumThreshold:
		return TierLow
	case score < tierHighThreshold:
		return TierMedium
	case score < tierCriticalThreshold:
		return TierHigh
	default:
		return TierCritical
	}
}
