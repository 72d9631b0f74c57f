package models

import (
	"time"

	"github.com/google/uuid"
)

type StrikeSeverity string

const (
	StrikeMinor  StrikeSeverity = "minor"
	StrikeMajor  StrikeSeverity = "major"
	StrikeSevere StrikeSeverity = "severe"
)

// StrikeSeverityFor folds a content severity into the strike scale. Every
// input, including unknown values, maps to exactly one strike severity.
func StrikeSeverityFor(s Severity) StrikeSeverity {
	switch s {
	case SeverityCritical:
		return StrikeSevere
	case SeverityHigh:
		return StrikeMajor
	default:
		return StrikeMinor
	}
}

type UserStrike struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"userId" db:"user_id"`
	Reason           string         `json:"reason"`
	Severity         StrikeSeverity `json:"severity"`
	FlaggedContentID uuid.UUID      `json:"flaggedContentId" db:"flagged_content_id"`
	IssuedBy         uuid.UUID      `json:"issuedBy" db:"issued_by"`
	Notes            string         `json:"notes"`
	IsActive         bool           `json:"isActive" db:"is_active"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
}
