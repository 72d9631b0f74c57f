package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

func result(conf models.Confidence, flags ...string) models.ModerationResult {
	return models.ModerationResult{
		IsClean:    len(flags) == 0,
		Flags:      flags,
		Confidence: conf,
	}
}

func TestShouldAutoReject(t *testing.T) {
	require := require.New(t)

	r := result(models.ConfidenceHigh, models.FlagSpam, models.FlagProfanity, models.FlagContactInfo)
	require.True(ShouldAutoReject(r))
	require.Equal(DecisionAutoReject, Decide(r))
	require.Equal(models.FlagRejected, InitialStatus(r))

	// two severe flags reject even at medium confidence
	require.True(ShouldAutoReject(result(models.ConfidenceMedium, models.FlagSpam, models.FlagSuspiciousLinks)))

	require.False(ShouldAutoReject(result(models.ConfidenceMedium, models.FlagSpam, models.FlagContactInfo)))
	require.False(ShouldAutoReject(result(models.ConfidenceHigh, models.FlagSpam)))

	withRule := result(models.ConfidenceMedium, "weapons")
	withRule.MatchedProhibited = []models.ProhibitedItem{{Action: models.ActionAutoReject, Severity: models.SeverityLow}}
	require.True(ShouldAutoReject(withRule))
}

func TestShouldFlagForReview(t *testing.T) {
	require := require.New(t)

	r := result(models.ConfidenceMedium, models.FlagContactInfo)
	require.True(ShouldFlagForReview(r))
	require.False(ShouldAutoReject(r))
	require.Equal(DecisionFlagForReview, Decide(r))
	require.Equal(models.FlagPending, InitialStatus(r))

	require.True(ShouldFlagForReview(result(models.ConfidenceLow, models.FlagContactInfo)))
	require.False(ShouldFlagForReview(result(models.ConfidenceLow)))

	withRule := result(models.ConfidenceLow, "counterfeit")
	withRule.MatchedProhibited = []models.ProhibitedItem{{Action: models.ActionFlag}}
	require.True(ShouldFlagForReview(withRule))

	warn := result(models.ConfidenceLow, "alcohol")
	warn.MatchedProhibited = []models.ProhibitedItem{{Action: models.ActionWarn}}
	require.Equal(DecisionAllow, Decide(warn))
}

func TestDecideClean(t *testing.T) {
	require := require.New(t)
	r := ModerateText("Selling my calculus textbook, great condition, $40")
	require.Equal(DecisionAllow, Decide(r))
}

func TestDecidePrefersAutoReject(t *testing.T) {
	require := require.New(t)

	// qualifies for both checks
	r := result(models.ConfidenceHigh, models.FlagSpam, models.FlagProfanity, models.FlagContactInfo)
	require.True(ShouldFlagForReview(r))
	require.Equal(DecisionAutoReject, Decide(r))
}

func TestSeverityFor(t *testing.T) {
	require := require.New(t)

	r := result(models.ConfidenceMedium, "x")
	require.Equal(models.SeverityMedium, SeverityFor(r))

	r.Confidence = models.ConfidenceHigh
	require.Equal(models.SeverityHigh, SeverityFor(r))

	r.MatchedProhibited = []models.ProhibitedItem{
		{Severity: models.SeverityLow},
		{Severity: models.SeverityCritical},
		{Severity: models.SeverityMedium},
	}
	require.Equal(models.SeverityCritical, SeverityFor(r))

	r.MatchedProhibited = []models.ProhibitedItem{{Severity: models.SeverityLow}}
	require.Equal(models.SeverityLow, SeverityFor(r))
}
