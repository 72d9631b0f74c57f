package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID
	Name            string
	Email           string
	Role            Role
	IsSuspended     bool           `db:"is_suspended"`
	SuspendedReason sql.NullString `db:"suspended_reason"`
	SuspendedAt     sql.NullTime   `db:"suspended_at"`
	CreatedAt       time.Time      `db:"created_at"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID          uuid.UUID
	Role        Role
	IsSuspended bool
	Perms       Perms
}

func ActorFromUser(u *User) *Actor {
	return &Actor{
		ID:          u.ID,
		Role:        u.Role,
		IsSuspended: u.IsSuspended,
		Perms:       PermsForRole(u.Role),
	}
}
