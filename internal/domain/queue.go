package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

const (
	DefaultFlagPageSize = 50
	MaxFlagPageSize     = 200
	MaxReasonLen        = 500
	MaxNotesLen         = 2000
)

// StepResult is the outcome of one secondary effect of an operation.
type StepResult struct {
	Attempted bool
	Err       error
}

func (s StepResult) OK() bool {
	return s.Attempted && s.Err == nil
}

func (s StepResult) Failed() bool {
	return s.Attempted && s.Err != nil
}

func (s StepResult) MarshalJSON() ([]byte, error) {
	v := struct {
		Attempted bool   `json:"attempted"`
		OK        bool   `json:"ok"`
		Error     string `json:"error,omitempty"`
	}{Attempted: s.Attempted, OK: s.OK()}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	return jsoniter.Marshal(v)
}

type ResolveRequest struct {
	FlagID        uuid.UUID         `json:"-"`
	Status        models.FlagStatus `json:"status"`
	Notes         string            `json:"notes"`
	DeleteContent bool              `json:"deleteContent"`
	IssueStrike   bool              `json:"issueStrike"`
}

// Resolution reports what a resolve did. The status change always happened
// when a Resolution is returned; the other steps may have failed.
type Resolution struct {
	Flag           *models.FlaggedContent `json:"flag"`
	ContentDeleted StepResult             `json:"contentDeleted"`
	Strike         StepResult             `json:"strike"`
	IssuedStrike   *models.UserStrike     `json:"issuedStrike,omitempty"`
	Audit          StepResult             `json:"audit"`
	Notification   StepResult             `json:"notification"`
}

// Complete reports whether every attempted step succeeded.
func (r *Resolution) Complete() bool {
	for _, s := range []StepResult{r.ContentDeleted, r.Strike, r.Audit, r.Notification} {
		if s.Failed() {
			return false
		}
	}
	return true
}

type ManualFlag struct {
	ContentType models.ContentType `json:"contentType"`
	ContentID   uuid.UUID          `json:"contentId"`
	Reason      string             `json:"reason"`
	Severity    models.Severity    `json:"severity"`
	Notes       string             `json:"notes"`
}

type FlagQueue struct {
	repos Repos
	clock clock.Clock
	log   zerolog.Logger
}

func NewFlagQueue(repos Repos, clk clock.Clock, log zerolog.Logger) *FlagQueue {
	return &FlagQueue{
		repos: repos,
		clock: clk,
		log:   log.With().Str("component", "flag_queue").Logger(),
	}
}

func (q *FlagQueue) List(ctx context.Context, actor *models.Actor, filter models.FlagFilter) ([]models.FlaggedContent, error) {
	if err := authorizeStaff(actor, models.PermViewFlags); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.ErrValidation{Field: "status", Problem: "unknown status"}
	}
	if filter.ContentType != "" && !filter.ContentType.Valid() {
		return nil, models.ErrValidation{Field: "contentType", Problem: "unknown content type"}
	}
	if filter.Source != "" && !filter.Source.Valid() {
		return nil, models.ErrValidation{Field: "source", Problem: "unknown source"}
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultFlagPageSize
	}
	if filter.Limit > MaxFlagPageSize {
		filter.Limit = MaxFlagPageSize
	}
	return q.repos.Flags.ListFlags(ctx, filter)
}

func (q *FlagQueue) Get(ctx context.Context, actor *models.Actor, flagID uuid.UUID) (*models.FlaggedContent, error) {
	if err := authorizeStaff(actor, models.PermViewFlags); err != nil {
		return nil, err
	}
	return q.repos.Flags.GetFlag(ctx, flagID)
}

func (q *FlagQueue) CreateManual(ctx context.Context, actor *models.Actor, req ManualFlag) (*models.FlaggedContent, error) {
	if err := authorizeStaff(actor, models.PermCreateFlag); err != nil {
		return nil, err
	}
	if !req.ContentType.Valid() {
		return nil, models.ErrValidation{Field: "contentType", Problem: "unknown content type"}
	}
	if req.ContentID == uuid.Nil {
		return nil, models.ErrValidation{Field: "contentId", Problem: "required"}
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" || len([]rune(req.Reason)) > MaxReasonLen {
		return nil, models.ErrValidation{Field: "reason", Problem: fmt.Sprintf("must be 1 to %d characters", MaxReasonLen)}
	}
	if req.Severity == "" {
		req.Severity = models.SeverityMedium
	}
	if !req.Severity.Valid() {
		return nil, models.ErrValidation{Field: "severity", Problem: "unknown severity"}
	}
	if len([]rune(req.Notes)) > MaxNotesLen {
		return nil, models.ErrValidation{Field: "notes", Problem: "too long"}
	}

	owner, err := q.repos.Content.OwnerOf(ctx, req.ContentType, req.ContentID)
	if err != nil {
		return nil, err
	}

	flag := &models.FlaggedContent{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		UserID:      owner,
		Reason:      req.Reason,
		Severity:    req.Severity,
		Status:      models.FlagPending,
		Source:      models.SourceAdmin,
		Details: models.NewAdminDetails(models.AdminDetails{
			CreatedBy: actor.ID,
			Notes:     req.Notes,
		}),
	}
	if err := q.repos.Flags.CreateFlag(ctx, flag); err != nil {
		return nil, fmt.Errorf("creating flag: %w", err)
	}

	appendAudit(ctx, q.repos.Audit, q.log, models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.AuditCreateFlag,
		TargetType: "flagged_content",
		TargetID:   flag.ID,
		Details: map[string]interface{}{
			"contentType": flag.ContentType,
			"contentId":   flag.ContentID.String(),
			"severity":    flag.Severity,
		},
	})
	return flag, nil
}

func (q *FlagQueue) Resolve(ctx context.Context, actor *models.Actor, req ResolveRequest) (*Resolution, error) {
	perms := []models.Perm{models.PermResolveFlag}
	if req.DeleteContent {
		perms = append(perms, models.PermDeleteContent)
	}
	if req.IssueStrike {
		perms = append(perms, models.PermIssueStrike)
	}
	if err := authorizeStaff(actor, perms...); err != nil {
		return nil, err
	}
	if !req.Status.Terminal() {
		return nil, models.ErrValidation{Field: "status", Problem: "must be approved, rejected or deleted"}
	}
	if len([]rune(req.Notes)) > MaxNotesLen {
		return nil, models.ErrValidation{Field: "notes", Problem: "too long"}
	}

	flag, err := q.repos.Flags.GetFlag(ctx, req.FlagID)
	if err != nil {
		return nil, err
	}
	if flag.Status.Terminal() {
		return nil, models.ErrAlreadyResolved
	}

	review := models.FlagReview{
		Status:     req.Status,
		ReviewedBy: actor.ID,
		ReviewedAt: q.clock.Now().UTC(),
		Notes:      req.Notes,
	}
	if err := q.repos.Flags.ResolveFlag(ctx, flag.ID, review); err != nil {
		if errors.Is(err, models.ErrAlreadyResolved) {
			return nil, err
		}
		return nil, fmt.Errorf("updating flag status: %w", err)
	}
	flag.Status = review.Status
	flag.ReviewedBy = &review.ReviewedBy
	flag.ReviewedAt = &review.ReviewedAt
	flag.ReviewNotes = review.Notes

	log := q.log.With().
		Str("flag_id", flag.ID.String()).
		Str("actor_id", actor.ID.String()).
		Logger()
	res := &Resolution{Flag: flag}

	if req.DeleteContent && req.Status == models.FlagDeleted {
		err := q.repos.Content.Delete(ctx, flag.ContentType, flag.ContentID)
		if err != nil {
			log.Error().
				Err(err).
				Str("content_type", string(flag.ContentType)).
				Str("content_id", flag.ContentID.String()).
				Msg("flag marked deleted but content deletion failed")
		}
		res.ContentDeleted = StepResult{Attempted: true, Err: err}
	}

	if req.IssueStrike && (req.Status == models.FlagRejected || req.Status == models.FlagDeleted) {
		strike := &models.UserStrike{
			UserID:           flag.UserID,
			Reason:           flag.Reason,
			Severity:         models.StrikeSeverityFor(flag.Severity),
			FlaggedContentID: flag.ID,
			IssuedBy:         actor.ID,
			Notes:            req.Notes,
			IsActive:         true,
		}
		err := q.repos.Strikes.CreateStrike(ctx, strike)
		if err != nil {
			log.Error().Err(err).Str("user_id", flag.UserID.String()).Msg("issuing strike")
		} else {
			res.IssuedStrike = strike
		}
		res.Strike = StepResult{Attempted: true, Err: err}
	}

	res.Audit = appendAudit(ctx, q.repos.Audit, log, models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.AuditResolveFlag,
		TargetType: "flagged_content",
		TargetID:   flag.ID,
		Details: map[string]interface{}{
			"status":         req.Status,
			"deleteContent":  req.DeleteContent,
			"issueStrike":    req.IssueStrike,
			"contentDeleted": res.ContentDeleted.OK(),
			"strikeIssued":   res.Strike.OK(),
		},
	})

	payload := func() map[string]interface{} {
		return map[string]interface{}{
			"contentType": flag.ContentType,
			"contentId":   flag.ContentID.String(),
			"reason":      flag.Reason,
		}
	}
	if res.ContentDeleted.OK() {
		res.Notification = notify(ctx, q.repos.Notifier, log, flag.UserID, models.NotifContentRemoved, payload())
	}
	if res.Strike.OK() {
		p := payload()
		p["severity"] = res.IssuedStrike.Severity
		n := notify(ctx, q.repos.Notifier, log, flag.UserID, models.NotifStrikeIssued, p)
		if !res.Notification.Failed() {
			res.Notification = n
		}
	}
	return res, nil
}
