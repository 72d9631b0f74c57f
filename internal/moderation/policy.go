package moderation

import "gitlab.com/ranfdev/unimarket/internal/models"

type Decision string

const (
	DecisionAllow         Decision = "allow"
	DecisionFlagForReview Decision = "flag_for_review"
	DecisionAutoReject    Decision = "auto_reject"
)

const (
	// Flags needed, together with high confidence, to auto-reject.
	AutoRejectMinFlags = 2
	// Distinct severe flags needed to auto-reject regardless of confidence.
	AutoRejectMinSevereFlags = 2
	ReviewMinFlags           = 1
)

var severeFlags = map[string]struct{}{
	models.FlagSpam:            {},
	models.FlagProfanity:       {},
	models.FlagSuspiciousLinks: {},
}

func anyRuleAction(r models.ModerationResult, action models.RuleAction) bool {
	for _, rule := range r.MatchedProhibited {
		if rule.Action == action {
			return true
		}
	}
	return false
}

func ShouldAutoReject(r models.ModerationResult) bool {
	if r.Confidence.AtLeast(models.ConfidenceHigh) && len(r.Flags) >= AutoRejectMinFlags {
		return true
	}
	severe := 0
	for _, f := range r.Flags {
		if _, ok := severeFlags[f]; ok {
			severe++
		}
	}
	if severe >= AutoRejectMinSevereFlags {
		return true
	}
	return anyRuleAction(r, models.ActionAutoReject)
}

func ShouldFlagForReview(r models.ModerationResult) bool {
	if r.Confidence == models.ConfidenceMedium && len(r.Flags) >= ReviewMinFlags {
		return true
	}
	if r.HasFlag(models.FlagContactInfo) {
		return true
	}
	return anyRuleAction(r, models.ActionFlag)
}

// Decide checks auto-rejection before review, so a result matching both is
// rejected.
func Decide(r models.ModerationResult) Decision {
	switch {
	case ShouldAutoReject(r):
		return DecisionAutoReject
	case ShouldFlagForReview(r):
		return DecisionFlagForReview
	}
	return DecisionAllow
}

// SeverityFor is the highest severity among matched rules, falling back to the
// result confidence.
func SeverityFor(r models.ModerationResult) models.Severity {
	var top models.Severity
	for _, rule := range r.MatchedProhibited {
		if rule.Severity.Rank() > top.Rank() {
			top = rule.Severity
		}
	}
	if top != "" {
		return top
	}
	if r.Confidence == models.ConfidenceHigh {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

func InitialStatus(r models.ModerationResult) models.FlagStatus {
	if ShouldAutoReject(r) {
		return models.FlagRejected
	}
	return models.FlagPending
}
