package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrust struct {
	trusted map[string]bool
}

func (s *stubTrust) IsTrusted(address string) bool {
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return false
	}
	return s.trusted[strings.ToLower(parts[1])]
}

func testWeights() map[string]float64 {
	return map[string]float64{
		"obstruction":         70,
		"secrecy":             50,
		"market manipulation": 80,
		"compliant":           0,
	}
}

func internalTrust() TrustChecker {
	return &stubTrust{trusted: map[string]bool{"bank.com": true}}
}

func TestScoreIsDeterministic(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())
	classification := &Classification{Category: "obstruction", Violation: true}
	participants := []string{"a@bank.com", "b@bank.com", "c@bank.com"}

	first, err := scorer.Score(classification, participants)
	require.NoError(t, err)
	second, err := scorer.Score(classification, participants)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Tier, second.Tier)
	assert.Equal(t, first.Factors, second.Factors)
}

func TestScoreCategoryWeightAndParticipants(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())

	// 3 participants: base 70 + 2 extras * 2.0
	risk, err := scorer.Score(
		&Classification{Category: "obstruction", Violation: true},
		[]string{"a@bank.com", "b@bank.com", "c@bank.com"},
	)
	require.NoError(t, err)
	assert.Equal(t, 74.0, risk.Score)
	assert.Equal(t, TierHigh, risk.Tier)
	require.Len(t, risk.Factors, 2)
	assert.Equal(t, "category:obstruction", risk.Factors[0].Name)
	assert.Equal(t, 70.0, risk.Factors[0].Weight)
	assert.Equal(t, "participant_count", risk.Factors[1].Name)
	assert.Equal(t, 4.0, risk.Factors[1].Weight)
}

func TestScoreParticipantBonusIsCapped(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())

	participants := []string{"sender@bank.com"}
	for i := 0; i < 20; i++ {
		participants = append(participants, "rcpt@bank.com")
	}

	risk, err := scorer.Score(&Classification{Category: "secrecy", Violation: true}, participants)
	require.NoError(t, err)
	// 50 base + capped 10 participant bonus
	assert.Equal(t, 60.0, risk.Score)
}

func TestScoreExternalParticipantRaisesRisk(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())
	classification := &Classification{Category: "secrecy", Violation: true}

	internal, err := scorer.Score(classification, []string{"a@bank.com", "b@bank.com"})
	require.NoError(t, err)
	external, err := scorer.Score(classification, []string{"a@bank.com", "b@rival.com"})
	require.NoError(t, err)

	assert.Equal(t, internal.Score+15.0, external.Score)
	var names []string
	for _, f := range external.Factors {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "external_participant")
}

func TestScoreMonotonicInCategoryWeight(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())
	participants := []string{"a@bank.com", "b@bank.com"}

	low, err := scorer.Score(&Classification{Category: "secrecy", Violation: true}, participants)
	require.NoError(t, err)
	high, err := scorer.Score(&Classification{Category: "market manipulation", Violation: true}, participants)
	require.NoError(t, err)

	assert.Greater(t, high.Score, low.Score)
}

func TestScoreNonViolationIsCapped(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())

	// Non-violation with many participants and an external address still
	// stays under the ceiling.
	risk, err := scorer.Score(
		&Classification{Category: "compliant", Violation: false},
		[]string{"a@bank.com", "b@rival.com", "c@rival.com", "d@rival.com"},
	)
	require.NoError(t, err)
	assert.LessOrEqual(t, risk.Score, 10.0)
	assert.Equal(t, TierLow, risk.Tier)
}

func TestScoreViolationNeverBelowNonViolationCeiling(t *testing.T) {
	weights := testWeights()
	weights["minor infraction"] = 4
	scorer := NewRiskScorer(weights, internalTrust())
	participants := []string{"a@bank.com"}

	violation, err := scorer.Score(&Classification{Category: "minor infraction", Violation: true}, participants)
	require.NoError(t, err)
	nonViolation, err := scorer.Score(&Classification{Category: "compliant", Violation: false}, participants)
	require.NoError(t, err)

	assert.Equal(t, 10.0, violation.Score, "violation scores floor at the non-violation ceiling")
	assert.GreaterOrEqual(t, violation.Score, nonViolation.Score)

	// A low-weight category marked as a violation still outranks the
	// same participants without a violation.
	zeroWeight, err := scorer.Score(&Classification{Category: "compliant", Violation: true}, participants)
	require.NoError(t, err)
	assert.Equal(t, 10.0, zeroWeight.Score)
}

func TestScoreClampsAtMax(t *testing.T) {
	weights := testWeights()
	weights["money laundering"] = 95
	scorer := NewRiskScorer(weights, internalTrust())

	participants := []string{"a@bank.com", "b@rival.com", "c@rival.com", "d@rival.com", "e@rival.com", "f@rival.com"}
	risk, err := scorer.Score(&Classification{Category: "money laundering", Violation: true}, participants)
	require.NoError(t, err)
	assert.Equal(t, 100.0, risk.Score)
	assert.Equal(t, TierCritical, risk.Tier)
}

func TestScoreUnknownCategoryFailsLoud(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())

	_, err := scorer.Score(&Classification{Category: "insider trading", Violation: true}, []string{"a@bank.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestScoreCategoryLookupIsCaseInsensitive(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), internalTrust())

	risk, err := scorer.Score(&Classification{Category: "  Obstruction ", Violation: true}, []string{"a@bank.com"})
	require.NoError(t, err)
	assert.Equal(t, 70.0, risk.Score)
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		tier  RiskTier
	}{
		{0, TierLow},
		{24.9, TierLow},
		{25, TierMedium},
		{49.9, TierMedium},
		{50, TierHigh},
		{74.9, TierHigh},
		{75, TierCritical},
		{100, TierCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tier, tierFor(tc.score), "score %.1f", tc.score)
	}
}

func TestScoreWithoutTrustCheckerSkipsExternalFactor(t *testing.T) {
	scorer := NewRiskScorer(testWeights(), nil)

	risk, err := scorer.Score(&Classification{Category: "secrecy", Violation: true}, []string{"a@rival.com"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, risk.Score)
}
