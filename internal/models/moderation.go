package models

import (
	"time"

	"github.com/google/uuid"
)

type RuleType string

const (
	RuleTypeKeyword    RuleType = "keyword"
	RuleTypeRegex      RuleType = "regex"
	RuleTypeURLPattern RuleType = "url_pattern"
	RuleTypeCategory   RuleType = "category"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeKeyword, RuleTypeRegex, RuleTypeURLPattern, RuleTypeCategory:
		return true
	}
	return false
}

// IsPattern reports whether the rule's pattern is a regular expression.
func (t RuleType) IsPattern() bool {
	return t == RuleTypeRegex || t == RuleTypeURLPattern
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Rank orders severities low < medium < high < critical. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

type RuleAction string

const (
	ActionFlag       RuleAction = "flag"
	ActionAutoReject RuleAction = "auto_reject"
	ActionWarn       RuleAction = "warn"
)

func (a RuleAction) Valid() bool {
	switch a {
	case ActionFlag, ActionAutoReject, ActionWarn:
		return true
	}
	return false
}

const MaxPatternLen = 500

type ProhibitedItem struct {
	ID          uuid.UUID  `json:"id"`
	Type        RuleType   `json:"type"`
	Pattern     string     `json:"pattern"`
	Severity    Severity   `json:"severity"`
	Action      RuleAction `json:"action"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// ProhibitedItemReq is the admin input for creating or replacing a rule.
type ProhibitedItemReq struct {
	Type        RuleType   `json:"type"`
	Pattern     string     `json:"pattern"`
	Severity    Severity   `json:"severity"`
	Action      RuleAction `json:"action"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	IsActive    *bool      `json:"isActive"`
}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceMedium:
		return 1
	case ConfidenceHigh:
		return 2
	}
	return 0
}

// AtLeast reports whether c is the same as or stronger than other.
func (c Confidence) AtLeast(other Confidence) bool {
	return c.rank() >= other.rank()
}

const (
	FlagSpam            = "spam"
	FlagProfanity       = "profanity"
	FlagContactInfo     = "contact_info"
	FlagSuspiciousLinks = "suspicious_links"
	FlagProhibited      = "prohibited"
)

type ModerationResult struct {
	IsClean           bool             `json:"isClean"`
	Flags             []string         `json:"flags"`
	Confidence        Confidence       `json:"confidence"`
	Reasons           []string         `json:"reasons"`
	MatchedProhibited []ProhibitedItem `json:"-"`
	// RuleReasons are the entries of Reasons produced by stored rules. They
	// may quote a rule pattern.
	RuleReasons []string `json:"-"`
}

func (r ModerationResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
