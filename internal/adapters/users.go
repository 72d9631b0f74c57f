package adapters

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) domain.UserRepo {
	return &userRepo{db}
}

func (r *userRepo) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	sql, args, _ := psql.Select("id", "name", "email", "role", "is_suspended", "suspended_reason", "suspended_at", "created_at").
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()

	var u models.User
	err := pgxscan.Get(ctx, r.db, &u, sql, args...)
	if err != nil {
		return nil, notFound(err, models.ErrNotFound)
	}
	return &u, nil
}

func (r *userRepo) update(ctx context.Context, userID uuid.UUID, set map[string]interface{}) error {
	sql, args, _ := psql.Update("users").
		SetMap(set).
		Where(sq.Eq{"id": userID}).
		ToSql()

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	return r.update(ctx, userID, map[string]interface{}{"role": role})
}

func (r *userRepo) SetSuspended(ctx context.Context, userID uuid.UUID, suspended bool, reason string, at time.Time) error {
	set := map[string]interface{}{
		"is_suspended":     suspended,
		"suspended_reason": nil,
		"suspended_at":     nil,
	}
	if suspended {
		if reason != "" {
			set["suspended_reason"] = reason
		}
		set["suspended_at"] = at
	}
	return r.update(ctx, userID, set)
}
