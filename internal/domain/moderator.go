package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
	"gitlab.com/ranfdev/unimarket/internal/utils"
)

const MaxSubmissionLen = 20000

type Submission struct {
	ContentType models.ContentType `json:"contentType"`
	ContentID   uuid.UUID          `json:"contentId"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Category    string             `json:"category"`
	PriceCents  *int64             `json:"priceCents"`
}

type MatchedCategory struct {
	Category string          `json:"category"`
	Severity models.Severity `json:"severity"`
}

// PublicVerdict is what the submitter gets to see. It never carries rule
// patterns.
type PublicVerdict struct {
	Decision   moderation.Decision `json:"decision"`
	Flags      []string            `json:"flags"`
	Reasons    []string            `json:"reasons"`
	Categories []MatchedCategory   `json:"categories"`
	SpamScore  *int                `json:"spamScore,omitempty"`
	FlagID     *uuid.UUID          `json:"flagId,omitempty"`
}

type Verdict struct {
	Decision  moderation.Decision
	Result    models.ModerationResult
	SpamScore *int
	Flag      *models.FlaggedContent
	Public    PublicVerdict
}

// Moderator is the entry point for new content: it moderates a submission
// and queues it when needed.
type Moderator struct {
	repos  Repos
	engine TextModerator
	log    zerolog.Logger
}

func NewModerator(repos Repos, engine TextModerator, log zerolog.Logger) *Moderator {
	return &Moderator{
		repos:  repos,
		engine: engine,
		log:    log.With().Str("component", "moderator").Logger(),
	}
}

func validateSubmission(sub Submission) error {
	if !sub.ContentType.Valid() {
		return models.ErrValidation{Field: "contentType", Problem: "unknown content type"}
	}
	if sub.ContentID == uuid.Nil {
		return models.ErrValidation{Field: "contentId", Problem: "required"}
	}
	if len(sub.Title)+len(sub.Body) > MaxSubmissionLen {
		return models.ErrValidation{Field: "body", Problem: "too long"}
	}
	if sub.PriceCents != nil && *sub.PriceCents < 0 {
		return models.ErrValidation{Field: "priceCents", Problem: "negative"}
	}
	return nil
}

// Check moderates a submission. Content that isn't stored yet gets a verdict
// but no queue entry; stored content is queued under its owner, and only the
// owner or someone who can resolve flags may check it.
func (m *Moderator) Check(ctx context.Context, actor *models.Actor, sub Submission) (*Verdict, error) {
	if err := authorize(actor, models.PermCheckContent); err != nil {
		return nil, err
	}
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}
	owner, err := m.repos.Content.OwnerOf(ctx, sub.ContentType, sub.ContentID)
	stored := err == nil
	if err != nil && !errors.Is(err, models.ErrContentNotFound) {
		return nil, fmt.Errorf("finding content owner: %w", err)
	}
	if stored && owner != actor.ID && !actor.Perms.Check(models.PermResolveFlag) {
		return nil, models.ErrPermDenied
	}

	text := strings.TrimSpace(sub.Title + "\n" + sub.Body)
	res, err := m.engine.Moderate(ctx, moderation.Input{Text: text, Category: sub.Category})
	if err != nil {
		return nil, err
	}

	v := &Verdict{
		Decision: moderation.Decide(res),
		Result:   res,
	}
	if sub.ContentType == models.ContentListing && sub.PriceCents != nil {
		score := moderation.CalculateSpamScore(sub.Title, sub.Body, *sub.PriceCents)
		v.SpamScore = &score
	}

	if v.Decision != moderation.DecisionAllow && stored {
		flag, err := m.queue(ctx, owner, sub, v)
		if err != nil {
			return nil, err
		}
		v.Flag = flag
	}
	v.Public = publicVerdict(v)
	return v, nil
}

func (m *Moderator) queue(ctx context.Context, owner uuid.UUID, sub Submission, v *Verdict) (*models.FlaggedContent, error) {
	snapshots := make([]models.RuleSnapshot, len(v.Result.MatchedProhibited))
	for i, r := range v.Result.MatchedProhibited {
		snapshots[i] = models.SnapshotRule(r)
	}
	flag := &models.FlaggedContent{
		ContentType: sub.ContentType,
		ContentID:   sub.ContentID,
		UserID:      owner,
		Reason:      utils.Truncate(strings.Join(v.Result.Reasons, "; "), MaxReasonLen),
		Severity:    moderation.SeverityFor(v.Result),
		Status:      moderation.InitialStatus(v.Result),
		Source:      models.SourceAuto,
		Details: models.NewAutoDetails(models.AutoDetails{
			Flags:        v.Result.Flags,
			Reasons:      v.Result.Reasons,
			Confidence:   v.Result.Confidence,
			SpamScore:    v.SpamScore,
			MatchedRules: snapshots,
		}),
	}
	if err := m.repos.Flags.CreateFlag(ctx, flag); err != nil {
		return nil, fmt.Errorf("creating flag: %w", err)
	}

	log := m.log.With().Str("flag_id", flag.ID.String()).Logger()
	log.Info().
		Str("decision", string(v.Decision)).
		Str("severity", string(flag.Severity)).
		Strs("flags", v.Result.Flags).
		Msg("content queued")

	if flag.Status == models.FlagPending {
		notify(ctx, m.repos.Notifier, log, owner, models.NotifContentFlagged, map[string]interface{}{
			"contentType": sub.ContentType,
			"contentId":   sub.ContentID.String(),
			"flags":       v.Result.Flags,
		})
	}
	return flag, nil
}

func publicVerdict(v *Verdict) PublicVerdict {
	ruleReasons := utils.NewOrderedSet(v.Result.RuleReasons...)
	reasons := []string{}
	for _, r := range v.Result.Reasons {
		if !ruleReasons.Has(r) {
			reasons = append(reasons, r)
		}
	}
	cats := []MatchedCategory{}
	seen := utils.NewOrderedSet()
	for _, r := range v.Result.MatchedProhibited {
		c := r.Category
		if c == "" {
			c = models.FlagProhibited
		}
		if seen.Add(c + "\x00" + string(r.Severity)) {
			cats = append(cats, MatchedCategory{Category: c, Severity: r.Severity})
		}
	}
	pv := PublicVerdict{
		Decision:   v.Decision,
		Flags:      v.Result.Flags,
		Reasons:    reasons,
		Categories: cats,
		SpamScore:  v.SpamScore,
	}
	if v.Flag != nil {
		pv.FlagID = &v.Flag.ID
	}
	return pv
}
