package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

// authorize checks that the actor can act at all and holds every perm.
func authorize(actor *models.Actor, perms ...models.Perm) error {
	if actor == nil {
		return models.ErrPermDenied
	}
	if actor.IsSuspended {
		return models.ErrActorSuspended
	}
	return actor.Perms.Require(perms...)
}

// authorizeStaff is authorize restricted to admins and moderators.
func authorizeStaff(actor *models.Actor, perms ...models.Perm) error {
	if err := authorize(actor, perms...); err != nil {
		return err
	}
	if !actor.Role.IsStaff() {
		return models.ErrPermDenied
	}
	return nil
}

// canActOn reports whether actor may change target's role or suspension.
func canActOn(actor *models.Actor, target *models.User) error {
	if actor.ID == target.ID {
		return models.ErrSelfAction
	}
	// nobody acts on a user holding perms they lack
	if !models.PermsForRole(target.Role).SubsetOf(actor.Perms) {
		return models.ErrPermDenied
	}
	return nil
}

func appendAudit(ctx context.Context, audit AuditLog, log zerolog.Logger, entry models.AuditEntry) StepResult {
	err := audit.Append(ctx, &entry)
	if err != nil {
		log.Error().
			Err(err).
			Str("action", string(entry.Action)).
			Str("target_id", entry.TargetID.String()).
			Msg("appending audit entry")
	}
	return StepResult{Attempted: true, Err: err}
}

func notify(ctx context.Context, n Notifier, log zerolog.Logger, userID uuid.UUID, kind models.NotifKind, payload map[string]interface{}) StepResult {
	err := n.Notify(ctx, userID, kind, payload)
	if err != nil {
		log.Warn().
			Err(err).
			Str("user_id", userID.String()).
			Str("kind", string(kind)).
			Msg("sending notification")
	}
	return StepResult{Attempted: true, Err: err}
}
