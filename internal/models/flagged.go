package models

import (
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentListing ContentType = "listing"
	ContentMessage ContentType = "message"
	ContentProfile ContentType = "profile"
	ContentEvent   ContentType = "event"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentListing, ContentMessage, ContentProfile, ContentEvent:
		return true
	}
	return false
}

type FlagStatus string

const (
	FlagPending  FlagStatus = "pending"
	FlagApproved FlagStatus = "approved"
	FlagRejected FlagStatus = "rejected"
	FlagDeleted  FlagStatus = "deleted"
)

func (s FlagStatus) Valid() bool {
	return s == FlagPending || s.Terminal()
}

// Terminal states can't be left once reached.
func (s FlagStatus) Terminal() bool {
	switch s {
	case FlagApproved, FlagRejected, FlagDeleted:
		return true
	}
	return false
}

type FlagSource string

const (
	SourceAuto       FlagSource = "auto"
	SourceUserReport FlagSource = "user_report"
	SourceAdmin      FlagSource = "admin"
)

func (s FlagSource) Valid() bool {
	switch s {
	case SourceAuto, SourceUserReport, SourceAdmin:
		return true
	}
	return false
}

// RuleSnapshot is the copy of a matched rule kept with a flag, so later edits
// of the rule don't rewrite history.
type RuleSnapshot struct {
	ID       uuid.UUID  `json:"id"`
	Type     RuleType   `json:"type"`
	Pattern  string     `json:"pattern"`
	Category string     `json:"category,omitempty"`
	Severity Severity   `json:"severity"`
	Action   RuleAction `json:"action"`
}

func SnapshotRule(item ProhibitedItem) RuleSnapshot {
	return RuleSnapshot{
		ID:       item.ID,
		Type:     item.Type,
		Pattern:  item.Pattern,
		Category: item.Category,
		Severity: item.Severity,
		Action:   item.Action,
	}
}

type AutoDetails struct {
	Flags        []string       `json:"flags"`
	Reasons      []string       `json:"reasons"`
	Confidence   Confidence     `json:"confidence"`
	SpamScore    *int           `json:"spamScore,omitempty"`
	MatchedRules []RuleSnapshot `json:"matchedRules,omitempty"`
}

type ReportDetails struct {
	ReportCount int      `json:"reportCount"`
	Categories  []string `json:"categories"`
}

type AdminDetails struct {
	CreatedBy uuid.UUID `json:"createdBy"`
	Notes     string    `json:"notes,omitempty"`
}

// FlagDetails holds the source specific data of a flag. Exactly one of the
// pointers is set, the one matching Source.
type FlagDetails struct {
	Source FlagSource     `json:"source"`
	Auto   *AutoDetails   `json:"auto,omitempty"`
	Report *ReportDetails `json:"report,omitempty"`
	Admin  *AdminDetails  `json:"admin,omitempty"`
}

func NewAutoDetails(d AutoDetails) FlagDetails {
	return FlagDetails{Source: SourceAuto, Auto: &d}
}
func NewReportDetails(d ReportDetails) FlagDetails {
	return FlagDetails{Source: SourceUserReport, Report: &d}
}
func NewAdminDetails(d AdminDetails) FlagDetails {
	return FlagDetails{Source: SourceAdmin, Admin: &d}
}

type FlaggedContent struct {
	ID          uuid.UUID   `json:"id"`
	ContentType ContentType `json:"contentType"`
	ContentID   uuid.UUID   `json:"contentId"`
	UserID      uuid.UUID   `json:"userId"`
	Reason      string      `json:"reason"`
	Severity    Severity    `json:"severity"`
	Status      FlagStatus  `json:"status"`
	Source      FlagSource  `json:"source"`
	Details     FlagDetails `json:"details"`
	ReviewedBy  *uuid.UUID  `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time  `json:"reviewedAt,omitempty"`
	ReviewNotes string      `json:"reviewNotes,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type FlagFilter struct {
	Status      FlagStatus
	ContentType ContentType
	Source      FlagSource
	Limit       uint64
	Offset      uint64
}

// FlagReview is the single transition of a flag out of pending.
type FlagReview struct {
	Status     FlagStatus
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
	Notes      string
}
