package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
)

const MaxRuleDescriptionLen = 1000

type RuleAdmin struct {
	repos Repos
	log   zerolog.Logger
}

func NewRuleAdmin(repos Repos, log zerolog.Logger) *RuleAdmin {
	return &RuleAdmin{
		repos: repos,
		log:   log.With().Str("component", "rules").Logger(),
	}
}

func validateRule(req models.ProhibitedItemReq) error {
	if !req.Type.Valid() {
		return models.ErrValidation{Field: "type", Problem: "must be keyword, regex, url_pattern or category"}
	}
	if !req.Severity.Valid() {
		return models.ErrValidation{Field: "severity", Problem: "must be low, medium, high or critical"}
	}
	if !req.Action.Valid() {
		return models.ErrValidation{Field: "action", Problem: "must be flag, auto_reject or warn"}
	}
	pattern := strings.TrimSpace(req.Pattern)
	if pattern == "" {
		return models.ErrValidation{Field: "pattern", Problem: "required"}
	}
	if len([]rune(req.Pattern)) > models.MaxPatternLen {
		return models.ErrValidation{Field: "pattern", Problem: fmt.Sprintf("longer than %d characters", models.MaxPatternLen)}
	}
	if req.Type.IsPattern() {
		if err := moderation.ValidatePattern(req.Pattern); err != nil {
			return models.ErrValidation{Field: "pattern", Problem: err.Error()}
		}
	}
	if len([]rune(req.Description)) > MaxRuleDescriptionLen {
		return models.ErrValidation{Field: "description", Problem: "too long"}
	}
	return nil
}

func applyRuleReq(item *models.ProhibitedItem, req models.ProhibitedItemReq) {
	item.Type = req.Type
	item.Pattern = req.Pattern
	item.Severity = req.Severity
	item.Action = req.Action
	item.Category = strings.TrimSpace(req.Category)
	item.Description = strings.TrimSpace(req.Description)
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}

func (r *RuleAdmin) List(ctx context.Context, actor *models.Actor, includeInactive bool) ([]models.ProhibitedItem, error) {
	if err := authorizeStaff(actor, models.PermManageRules); err != nil {
		return nil, err
	}
	return r.repos.Rules.ListRules(ctx, includeInactive)
}

func (r *RuleAdmin) Create(ctx context.Context, actor *models.Actor, req models.ProhibitedItemReq) (*models.ProhibitedItem, error) {
	if err := authorizeStaff(actor, models.PermManageRules); err != nil {
		return nil, err
	}
	if err := validateRule(req); err != nil {
		return nil, err
	}

	item := &models.ProhibitedItem{IsActive: true, CreatedBy: &actor.ID}
	applyRuleReq(item, req)
	if err := r.repos.Rules.CreateRule(ctx, item); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	appendAudit(ctx, r.repos.Audit, r.log, models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.AuditCreateRule,
		TargetType: "prohibited_item",
		TargetID:   item.ID,
		Details:    ruleAuditDetails(item),
	})
	return item, nil
}

func (r *RuleAdmin) Update(ctx context.Context, actor *models.Actor, ruleID uuid.UUID, req models.ProhibitedItemReq) (*models.ProhibitedItem, error) {
	if err := authorizeStaff(actor, models.PermManageRules); err != nil {
		return nil, err
	}
	if err := validateRule(req); err != nil {
		return nil, err
	}

	item, err := r.repos.Rules.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	applyRuleReq(item, req)
	if err := r.repos.Rules.UpdateRule(ctx, item); err != nil {
		return nil, fmt.Errorf("updating rule: %w", err)
	}

	appendAudit(ctx, r.repos.Audit, r.log, models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.AuditUpdateRule,
		TargetType: "prohibited_item",
		TargetID:   item.ID,
		Details:    ruleAuditDetails(item),
	})
	return item, nil
}

func (r *RuleAdmin) Deactivate(ctx context.Context, actor *models.Actor, ruleID uuid.UUID) error {
	if err := authorizeStaff(actor, models.PermManageRules); err != nil {
		return err
	}
	if err := r.repos.Rules.DeactivateRule(ctx, ruleID); err != nil {
		return err
	}
	appendAudit(ctx, r.repos.Audit, r.log, models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.AuditDeactivateRule,
		TargetType: "prohibited_item",
		TargetID:   ruleID,
	})
	return nil
}

// The audit log is staff-only, so it may keep the pattern.
func ruleAuditDetails(item *models.ProhibitedItem) map[string]interface{} {
	return map[string]interface{}{
		"type":     item.Type,
		"pattern":  item.Pattern,
		"severity": item.Severity,
		"action":   item.Action,
		"category": item.Category,
		"isActive": item.IsActive,
	}
}
