package adapters

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

var ruleColumns = []string{
	"id", "type", "pattern", "severity", "action", "category", "description",
	"is_active", "created_by", "created_at", "updated_at",
}

type ruleRepo struct {
	db DBTX
}

func NewRuleRepo(db DBTX) domain.RuleRepo {
	return &ruleRepo{db}
}

func (r *ruleRepo) ActiveRules(ctx context.Context) ([]models.ProhibitedItem, error) {
	return r.ListRules(ctx, false)
}

func (r *ruleRepo) ListRules(ctx context.Context, includeInactive bool) ([]models.ProhibitedItem, error) {
	q := psql.Select(ruleColumns...).
		From("prohibited_items").
		OrderBy("created_at")
	if !includeInactive {
		q = q.Where(sq.Eq{"is_active": true})
	}
	sql, args, _ := q.ToSql()

	items := []models.ProhibitedItem{}
	err := pgxscan.Select(ctx, r.db, &items, sql, args...)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ruleRepo) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.ProhibitedItem, error) {
	sql, args, _ := psql.Select(ruleColumns...).
		From("prohibited_items").
		Where(sq.Eq{"id": ruleID}).
		ToSql()

	var item models.ProhibitedItem
	err := pgxscan.Get(ctx, r.db, &item, sql, args...)
	if err != nil {
		return nil, notFound(err, models.ErrNotFound)
	}
	return &item, nil
}

func (r *ruleRepo) CreateRule(ctx context.Context, item *models.ProhibitedItem) error {
	sql, args, _ := psql.Insert("prohibited_items").
		Columns("type", "pattern", "severity", "action", "category", "description", "is_active", "created_by").
		Values(item.Type, item.Pattern, item.Severity, item.Action, item.Category, item.Description, item.IsActive, item.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	return r.db.QueryRow(ctx, sql, args...).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *ruleRepo) UpdateRule(ctx context.Context, item *models.ProhibitedItem) error {
	sql, args, _ := psql.Update("prohibited_items").
		SetMap(map[string]interface{}{
			"type":        item.Type,
			"pattern":     item.Pattern,
			"severity":    item.Severity,
			"action":      item.Action,
			"category":    item.Category,
			"description": item.Description,
			"is_active":   item.IsActive,
			"updated_at":  sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": item.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	err := r.db.QueryRow(ctx, sql, args...).Scan(&item.UpdatedAt)
	return notFound(err, models.ErrNotFound)
}

func (r *ruleRepo) DeactivateRule(ctx context.Context, ruleID uuid.UUID) error {
	sql, args, _ := psql.Update("prohibited_items").
		Set("is_active", false).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": ruleID}).
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
