package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
)

// ContentStore reaches the marketplace content referenced by flags and
// reports. OwnerOf returns models.ErrContentNotFound for missing content.
type ContentStore interface {
	Exists(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (bool, error)
	OwnerOf(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (uuid.UUID, error)
	Delete(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) error
}

type RuleRepo interface {
	ActiveRules(ctx context.Context) ([]models.ProhibitedItem, error)
	ListRules(ctx context.Context, includeInactive bool) ([]models.ProhibitedItem, error)
	GetRule(ctx context.Context, ruleID uuid.UUID) (*models.ProhibitedItem, error)
	CreateRule(ctx context.Context, item *models.ProhibitedItem) error
	UpdateRule(ctx context.Context, item *models.ProhibitedItem) error
	DeactivateRule(ctx context.Context, ruleID uuid.UUID) error
}

type FlagRepo interface {
	CreateFlag(ctx context.Context, flag *models.FlaggedContent) error
	GetFlag(ctx context.Context, flagID uuid.UUID) (*models.FlaggedContent, error)
	ListFlags(ctx context.Context, filter models.FlagFilter) ([]models.FlaggedContent, error)
	FlagExistsFor(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (bool, error)
	// ResolveFlag moves a pending flag to a terminal status. It returns
	// models.ErrAlreadyResolved when the flag isn't pending anymore.
	ResolveFlag(ctx context.Context, flagID uuid.UUID, review models.FlagReview) error
}

type ReportRepo interface {
	ReportExists(ctx context.Context, reporterID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) (bool, error)
	// CreateReport returns models.ErrDuplicateReport when the reporter already
	// reported the content.
	CreateReport(ctx context.Context, report *models.UserReport) error
	CountReports(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (int, error)
	ReportCategories(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) ([]models.ReportCategory, error)
}

type StrikeRepo interface {
	CreateStrike(ctx context.Context, strike *models.UserStrike) error
	ListStrikes(ctx context.Context, userID uuid.UUID) ([]models.UserStrike, error)
	CountActiveStrikes(ctx context.Context, userID uuid.UUID) (int, error)
}

// AuditLog is append only.
type AuditLog interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
}

type UserRepo interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error
	SetSuspended(ctx context.Context, userID uuid.UUID, suspended bool, reason string, at time.Time) error
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind models.NotifKind, payload map[string]interface{}) error
}

type NotificationRepo interface {
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, userID uuid.UUID, notifID uuid.UUID) error
}

type TextModerator interface {
	Moderate(ctx context.Context, in moderation.Input) (models.ModerationResult, error)
}

// Repos groups the storage ports shared by the services.
type Repos struct {
	Content       ContentStore
	Rules         RuleRepo
	Flags         FlagRepo
	Reports       ReportRepo
	Strikes       StrikeRepo
	Audit         AuditLog
	Users         UserRepo
	Notifier      Notifier
	Notifications NotificationRepo
}
