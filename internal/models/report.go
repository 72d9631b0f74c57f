package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportCategory string

const (
	ReportSpam           ReportCategory = "spam"
	ReportScam           ReportCategory = "scam"
	ReportProhibitedItem ReportCategory = "prohibited_item"
	ReportInappropriate  ReportCategory = "inappropriate"
	ReportHarassment     ReportCategory = "harassment"
	ReportMisleading     ReportCategory = "misleading"
	ReportOther          ReportCategory = "other"
)

func (c ReportCategory) Valid() bool {
	switch c {
	case ReportSpam, ReportScam, ReportProhibitedItem, ReportInappropriate,
		ReportHarassment, ReportMisleading, ReportOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

const MaxReportDescriptionLen = 1000

type UserReport struct {
	ID          uuid.UUID      `json:"id"`
	ReporterID  uuid.UUID      `json:"reporterId" db:"reporter_id"`
	ContentType ContentType    `json:"contentType" db:"content_type"`
	ContentID   uuid.UUID      `json:"contentId" db:"content_id"`
	Category    ReportCategory `json:"category"`
	Description string         `json:"description"`
	Status      ReportStatus   `json:"status"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}

type ReportReq struct {
	ContentType ContentType    `json:"contentType"`
	ContentID   uuid.UUID      `json:"contentId"`
	Category    ReportCategory `json:"category"`
	Description string         `json:"description"`
}
