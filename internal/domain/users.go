package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

const MaxSuspensionReasonLen = 500

type UserAdmin struct {
	repos Repos
	clock clock.Clock
	log   zerolog.Logger
}

func NewUserAdmin(repos Repos, clk clock.Clock, log zerolog.Logger) *UserAdmin {
	return &UserAdmin{
		repos: repos,
		clock: clk,
		log:   log.With().Str("component", "users").Logger(),
	}
}

func (u *UserAdmin) SetRole(ctx context.Context, actor *models.Actor, targetID uuid.UUID, role models.Role) error {
	if err := authorizeStaff(actor, models.PermManageRole); err != nil {
		return err
	}
	if !role.Valid() {
		return models.ErrValidation{Field: "role", Problem: "must be admin, moderator or user"}
	}
	if actor.ID == targetID {
		return models.ErrSelfAction
	}
	target, err := u.repos.Users.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := canActOn(actor, target); err != nil {
		return err
	}

	if err := u.repos.Users.SetRole(ctx, targetID, role); err != nil {
		return fmt.Errorf("setting role: %w", err)
	}
	appendAudit(ctx, u.repos.Audit, u.log, models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.AuditSetRole,
		TargetType: "user",
		TargetID:   targetID,
		Details: map[string]interface{}{
			"from": target.Role,
			"to":   role,
		},
	})
	return nil
}

func (u *UserAdmin) SetSuspended(ctx context.Context, actor *models.Actor, targetID uuid.UUID, suspended bool, reason string) error {
	if err := authorizeStaff(actor, models.PermSuspendUser); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > MaxSuspensionReasonLen {
		return models.ErrValidation{Field: "reason", Problem: "too long"}
	}
	if actor.ID == targetID {
		return models.ErrSelfAction
	}
	target, err := u.repos.Users.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := canActOn(actor, target); err != nil {
		return err
	}

	if !suspended {
		reason = ""
	}
	if err := u.repos.Users.SetSuspended(ctx, targetID, suspended, reason, u.clock.Now().UTC()); err != nil {
		return fmt.Errorf("setting suspension: %w", err)
	}

	log := u.log.With().Str("target_id", targetID.String()).Logger()
	appendAudit(ctx, u.repos.Audit, log, models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.AuditSetSuspension,
		TargetType: "user",
		TargetID:   targetID,
		Details: map[string]interface{}{
			"suspended": suspended,
			"reason":    reason,
		},
	})
	if suspended {
		notify(ctx, u.repos.Notifier, log, targetID, models.NotifAccountSuspended, map[string]interface{}{
			"reason": reason,
		})
	}
	return nil
}

// Users can always read their own strikes.
func (u *UserAdmin) authorizeStrikes(actor *models.Actor, userID uuid.UUID) error {
	if actor != nil && actor.ID == userID {
		return authorize(actor)
	}
	return authorizeStaff(actor, models.PermViewStrikes)
}

func (u *UserAdmin) ListStrikes(ctx context.Context, actor *models.Actor, userID uuid.UUID) ([]models.UserStrike, error) {
	if err := u.authorizeStrikes(actor, userID); err != nil {
		return nil, err
	}
	return u.repos.Strikes.ListStrikes(ctx, userID)
}

func (u *UserAdmin) ActiveStrikeCount(ctx context.Context, actor *models.Actor, userID uuid.UUID) (int, error) {
	if err := u.authorizeStrikes(actor, userID); err != nil {
		return 0, err
	}
	return u.repos.Strikes.CountActiveStrikes(ctx, userID)
}
