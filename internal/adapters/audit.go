package adapters

import (
	"context"

	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type auditLog struct {
	db DBTX
}

func NewAuditLog(db DBTX) domain.AuditLog {
	return &auditLog{db}
}

func (a *auditLog) Append(ctx context.Context, entry *models.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	sql, args, _ := psql.Insert("admin_audit_log").
		Columns("actor_id", "action", "target_type", "target_id", "details").
		Values(entry.ActorID, entry.Action, entry.TargetType, entry.TargetID, details).
		Suffix("RETURNING id, created_at").
		ToSql()

	return a.db.QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.CreatedAt)
}
