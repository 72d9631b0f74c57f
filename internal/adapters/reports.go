package adapters

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type reportRepo struct {
	db DBTX
}

func NewReportRepo(db DBTX) domain.ReportRepo {
	return &reportRepo{db}
}

func (r *reportRepo) ReportExists(ctx context.Context, reporterID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) (bool, error) {
	sql, args, _ := psql.Select("1").
		From("user_reports").
		Where(sq.Eq{
			"reporter_id":  reporterID,
			"content_type": contentType,
			"content_id":   contentID,
		}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()

	var exists bool
	err := pgxscan.Get(ctx, r.db, &exists, sql, args...)
	return exists, err
}

func (r *reportRepo) CreateReport(ctx context.Context, report *models.UserReport) error {
	sql, args, _ := psql.Insert("user_reports").
		Columns("reporter_id", "content_type", "content_id", "category", "description", "status").
		Values(report.ReporterID, report.ContentType, report.ContentID, report.Category, report.Description, report.Status).
		Suffix("RETURNING id, created_at").
		ToSql()

	err := r.db.QueryRow(ctx, sql, args...).Scan(&report.ID, &report.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateReport
	}
	return err
}

func (r *reportRepo) CountReports(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (int, error) {
	sql, args, _ := psql.Select("COUNT(*)").
		From("user_reports").
		Where(sq.Eq{"content_type": contentType, "content_id": contentID}).
		ToSql()

	var count int
	err := r.db.QueryRow(ctx, sql, args...).Scan(&count)
	return count, err
}

func (r *reportRepo) ReportCategories(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) ([]models.ReportCategory, error) {
	sql, args, _ := psql.Select("category").
		From("user_reports").
		Where(sq.Eq{"content_type": contentType, "content_id": contentID}).
		GroupBy("category").
		OrderBy("MIN(created_at)").
		ToSql()

	categories := []models.ReportCategory{}
	err := pgxscan.Select(ctx, r.db, &categories, sql, args...)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
