package adapters

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type strikeRepo struct {
	db DBTX
}

func NewStrikeRepo(db DBTX) domain.StrikeRepo {
	return &strikeRepo{db}
}

func (r *strikeRepo) CreateStrike(ctx context.Context, strike *models.UserStrike) error {
	sql, args, _ := psql.Insert("user_strikes").
		Columns("user_id", "reason", "severity", "flagged_content_id", "issued_by", "notes", "is_active").
		Values(strike.UserID, strike.Reason, strike.Severity, strike.FlaggedContentID, strike.IssuedBy, strike.Notes, strike.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()

	return r.db.QueryRow(ctx, sql, args...).Scan(&strike.ID, &strike.CreatedAt)
}

func (r *strikeRepo) ListStrikes(ctx context.Context, userID uuid.UUID) ([]models.UserStrike, error) {
	sql, args, _ := psql.Select("id", "user_id", "reason", "severity", "flagged_content_id", "issued_by", "notes", "is_active", "created_at").
		From("user_strikes").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()

	strikes := []models.UserStrike{}
	err := pgxscan.Select(ctx, r.db, &strikes, sql, args...)
	if err != nil {
		return nil, err
	}
	return strikes, nil
}

func (r *strikeRepo) CountActiveStrikes(ctx context.Context, userID uuid.UUID) (int, error) {
	sql, args, _ := psql.Select("COUNT(*)").
		From("user_strikes").
		Where(sq.Eq{"user_id": userID, "is_active": true}).
		ToSql()

	var count int
	err := r.db.QueryRow(ctx, sql, args...).Scan(&count)
	return count, err
}
