package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditResolveFlag    AuditAction = "resolve_flag"
	AuditCreateFlag     AuditAction = "create_flag"
	AuditCreateRule     AuditAction = "create_rule"
	AuditUpdateRule     AuditAction = "update_rule"
	AuditDeactivateRule AuditAction = "deactivate_rule"
	AuditSetRole        AuditAction = "set_role"
	AuditSetSuspension  AuditAction = "set_suspension"
)

type AuditEntry struct {
	ID         uuid.UUID              `json:"id"`
	ActorID    uuid.UUID              `json:"actorId"`
	Action     AuditAction            `json:"action"`
	TargetType string                 `json:"targetType"`
	TargetID   uuid.UUID              `json:"targetId"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}
