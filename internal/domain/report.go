package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

// ReportThreshold is the number of reports that puts content in the queue.
const ReportThreshold = 3

type ReportReceipt struct {
	Report      *models.UserReport     `json:"report"`
	ReportCount int                    `json:"reportCount"`
	Flag        *models.FlaggedContent `json:"flag,omitempty"`
}

type ReportAggregator struct {
	repos        Repos
	log          zerolog.Logger
	notifyOwners bool
}

func NewReportAggregator(repos Repos, log zerolog.Logger, notifyOwners bool) *ReportAggregator {
	return &ReportAggregator{
		repos:        repos,
		log:          log.With().Str("component", "reports").Logger(),
		notifyOwners: notifyOwners,
	}
}

func validateReport(req models.ReportReq) error {
	if !req.ContentType.Valid() {
		return models.ErrValidation{Field: "contentType", Problem: "unknown content type"}
	}
	if req.ContentID == uuid.Nil {
		return models.ErrValidation{Field: "contentId", Problem: "required"}
	}
	if !req.Category.Valid() {
		return models.ErrValidation{Field: "category", Problem: "unknown category"}
	}
	if len([]rune(req.Description)) > models.MaxReportDescriptionLen {
		return models.ErrValidation{
			Field:   "description",
			Problem: fmt.Sprintf("longer than %d characters", models.MaxReportDescriptionLen),
		}
	}
	return nil
}

func (a *ReportAggregator) Submit(ctx context.Context, reporter *models.Actor, req models.ReportReq) (*ReportReceipt, error) {
	if err := authorize(reporter, models.PermCreateReport); err != nil {
		return nil, err
	}
	if err := validateReport(req); err != nil {
		return nil, err
	}

	dup, err := a.repos.Reports.ReportExists(ctx, reporter.ID, req.ContentType, req.ContentID)
	if err != nil {
		return nil, fmt.Errorf("checking existing report: %w", err)
	}
	if dup {
		return nil, models.ErrDuplicateReport
	}

	exists, err := a.repos.Content.Exists(ctx, req.ContentType, req.ContentID)
	if err != nil {
		return nil, fmt.Errorf("checking content: %w", err)
	}
	if !exists {
		return nil, models.ErrContentNotFound
	}

	report := &models.UserReport{
		ReporterID:  reporter.ID,
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		Category:    req.Category,
		Description: req.Description,
		Status:      models.ReportPending,
	}
	if err := a.repos.Reports.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	count, err := a.repos.Reports.CountReports(ctx, req.ContentType, req.ContentID)
	if err != nil {
		return nil, fmt.Errorf("counting reports: %w", err)
	}
	receipt := &ReportReceipt{Report: report, ReportCount: count}

	log := a.log.With().
		Str("content_type", string(req.ContentType)).
		Str("content_id", req.ContentID.String()).
		Logger()

	owner, ownerErr := a.repos.Content.OwnerOf(ctx, req.ContentType, req.ContentID)

	if count >= ReportThreshold {
		if ownerErr != nil {
			return nil, fmt.Errorf("finding content owner: %w", ownerErr)
		}
		flag, err := a.synthesize(ctx, report, owner, count)
		if err != nil {
			log.Error().Err(err).Int("report_count", count).Msg("creating flag from reports")
			return nil, err
		}
		receipt.Flag = flag
	}

	if a.notifyOwners {
		if ownerErr != nil {
			log.Warn().Err(ownerErr).Msg("finding content owner")
		} else {
			notify(ctx, a.repos.Notifier, log, owner, models.NotifContentReported, map[string]interface{}{
				"contentType": req.ContentType,
				"contentId":   req.ContentID.String(),
				"category":    req.Category,
			})
		}
	}
	return receipt, nil
}

// synthesize creates the queue entry for reported content, unless one already
// exists. Concurrent submissions can still both insert.
func (a *ReportAggregator) synthesize(ctx context.Context, report *models.UserReport, owner uuid.UUID, count int) (*models.FlaggedContent, error) {
	flagged, err := a.repos.Flags.FlagExistsFor(ctx, report.ContentType, report.ContentID)
	if err != nil || flagged {
		return nil, err
	}

	categories, err := a.repos.Reports.ReportCategories(ctx, report.ContentType, report.ContentID)
	if err != nil {
		return nil, fmt.Errorf("listing report categories: %w", err)
	}
	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = string(c)
	}

	flag := &models.FlaggedContent{
		ContentType: report.ContentType,
		ContentID:   report.ContentID,
		UserID:      owner,
		Reason:      "Multiple user reports: " + string(report.Category),
		Severity:    models.SeverityHigh,
		Status:      models.FlagPending,
		Source:      models.SourceUserReport,
		Details: models.NewReportDetails(models.ReportDetails{
			ReportCount: count,
			Categories:  cats,
		}),
	}

	flagged, err = a.repos.Flags.FlagExistsFor(ctx, report.ContentType, report.ContentID)
	if err != nil || flagged {
		return nil, err
	}
	if err := a.repos.Flags.CreateFlag(ctx, flag); err != nil {
		return nil, fmt.Errorf("creating flag: %w", err)
	}
	return flag, nil
}
