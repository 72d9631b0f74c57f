package adapters

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

var flagColumns = []string{
	"id", "content_type", "content_id", "user_id", "reason", "severity", "status", "source",
	"details", "reviewed_by", "reviewed_at", "review_notes", "created_at", "updated_at",
}

type flagRow struct {
	ID          uuid.UUID
	ContentType models.ContentType
	ContentID   uuid.UUID
	UserID      uuid.UUID
	Reason      string
	Severity    models.Severity
	Status      models.FlagStatus
	Source      models.FlagSource
	Details     []byte
	ReviewedBy  *uuid.UUID
	ReviewedAt  *time.Time
	ReviewNotes string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (row *flagRow) toModel() (*models.FlaggedContent, error) {
	f := &models.FlaggedContent{
		ID:          row.ID,
		ContentType: row.ContentType,
		ContentID:   row.ContentID,
		UserID:      row.UserID,
		Reason:      row.Reason,
		Severity:    row.Severity,
		Status:      row.Status,
		Source:      row.Source,
		ReviewedBy:  row.ReviewedBy,
		ReviewedAt:  row.ReviewedAt,
		ReviewNotes: row.ReviewNotes,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Details, &f.Details); err != nil {
		return nil, fmt.Errorf("decoding details of flag %s: %w", row.ID, err)
	}
	return f, nil
}

type flagRepo struct {
	db DBTX
}

func NewFlagRepo(db DBTX) domain.FlagRepo {
	return &flagRepo{db}
}

func (r *flagRepo) CreateFlag(ctx context.Context, flag *models.FlaggedContent) error {
	details, err := json.Marshal(flag.Details)
	if err != nil {
		return err
	}
	sql, args, _ := psql.Insert("flagged_content").
		Columns("content_type", "content_id", "user_id", "reason", "severity", "status", "source", "details").
		Values(flag.ContentType, flag.ContentID, flag.UserID, flag.Reason, flag.Severity, flag.Status, flag.Source, details).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	return r.db.QueryRow(ctx, sql, args...).Scan(&flag.ID, &flag.CreatedAt, &flag.UpdatedAt)
}

func (r *flagRepo) GetFlag(ctx context.Context, flagID uuid.UUID) (*models.FlaggedContent, error) {
	sql, args, _ := psql.Select(flagColumns...).
		From("flagged_content").
		Where(sq.Eq{"id": flagID}).
		ToSql()

	var row flagRow
	err := pgxscan.Get(ctx, r.db, &row, sql, args...)
	if err != nil {
		return nil, notFound(err, models.ErrNotFound)
	}
	return row.toModel()
}

func (r *flagRepo) ListFlags(ctx context.Context, filter models.FlagFilter) ([]models.FlaggedContent, error) {
	q := psql.Select(flagColumns...).
		From("flagged_content").
		OrderBy("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset)

	where := sq.Eq{}
	if filter.Status != "" {
		where["status"] = filter.Status
	}
	if filter.ContentType != "" {
		where["content_type"] = filter.ContentType
	}
	if filter.Source != "" {
		where["source"] = filter.Source
	}
	if len(where) > 0 {
		q = q.Where(where)
	}
	sql, args, _ := q.ToSql()

	rows := []flagRow{}
	err := pgxscan.Select(ctx, r.db, &rows, sql, args...)
	if err != nil {
		return nil, err
	}

	flags := make([]models.FlaggedContent, 0, len(rows))
	for i := range rows {
		f, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		flags = append(flags, *f)
	}
	return flags, nil
}

func (r *flagRepo) FlagExistsFor(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (bool, error) {
	sql, args, _ := psql.Select("1").
		From("flagged_content").
		Where(sq.Eq{"content_type": contentType, "content_id": contentID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()

	var exists bool
	err := pgxscan.Get(ctx, r.db, &exists, sql, args...)
	return exists, err
}

func (r *flagRepo) ResolveFlag(ctx context.Context, flagID uuid.UUID, review models.FlagReview) error {
	return execTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		sql, args, _ := psql.Update("flagged_content").
			Set("status", review.Status).
			Set("reviewed_by", review.ReviewedBy).
			Set("reviewed_at", review.ReviewedAt).
			Set("review_notes", review.Notes).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"id": flagID, "status": models.FlagPending}).
			ToSql()

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}

		// Nothing updated: tell a missing flag from a resolved one.
		var exists bool
		err = pgxscan.Get(ctx, tx, &exists, "SELECT EXISTS (SELECT 1 FROM flagged_content WHERE id = $1)", flagID)
		if err != nil {
			return err
		}
		if !exists {
			return models.ErrNotFound
		}
		return models.ErrAlreadyResolved
	})
}
