package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

func (f *fixture) pendingFlag(t *testing.T, severity models.Severity) (*models.FlaggedContent, uuid.UUID) {
	t.Helper()
	listing := f.store.AddContent(models.ContentListing, f.seller.ID)
	flag, err := f.queue.CreateManual(context.Background(), actor(f.admin), domain.ManualFlag{
		ContentType: models.ContentListing,
		ContentID:   listing,
		Reason:      "counterfeit goods",
		Severity:    severity,
	})
	require.Nil(t, err)
	return flag, listing
}

func TestResolveDeleteWithStrike(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	flag, listing := f.pendingFlag(t, models.SeverityCritical)
	auditBefore := len(f.store.AuditEntries())

	res, err := f.queue.Resolve(ctx, actor(f.moderator), domain.ResolveRequest{
		FlagID:        flag.ID,
		Status:        models.FlagDeleted,
		Notes:         "fake designer bags",
		DeleteContent: true,
		IssueStrike:   true,
	})
	require.Nil(err)
	require.True(res.Complete())
	require.True(res.ContentDeleted.OK())
	require.True(res.Strike.OK())
	require.True(res.Audit.OK())
	require.True(res.Notification.OK())

	exists, err := f.store.Exists(ctx, models.ContentListing, listing)
	require.Nil(err)
	require.False(exists)

	strikes, err := f.users.ListStrikes(ctx, actor(f.moderator), f.seller.ID)
	require.Nil(err)
	require.Len(strikes, 1)
	require.Equal(models.StrikeSevere, strikes[0].Severity)
	require.Equal(flag.ID, strikes[0].FlaggedContentID)
	require.Equal(f.moderator.ID, strikes[0].IssuedBy)
	require.True(strikes[0].IsActive)

	audit := f.store.AuditEntries()[auditBefore:]
	require.Len(audit, 1)
	require.Equal(models.AuditResolveFlag, audit[0].Action)
	require.Equal(flag.ID, audit[0].TargetID)

	stored, err := f.queue.Get(ctx, actor(f.admin), flag.ID)
	require.Nil(err)
	require.Equal(models.FlagDeleted, stored.Status)
	require.Equal(f.moderator.ID, *stored.ReviewedBy)
	require.Equal(f.clock.Now().UTC(), *stored.ReviewedAt)
	require.Equal("fake designer bags", stored.ReviewNotes)

	notifs, err := f.notifs.List(ctx, actor(f.seller))
	require.Nil(err)
	kinds := []models.NotifKind{}
	for _, n := range notifs {
		kinds = append(kinds, n.Kind)
	}
	require.Equal([]models.NotifKind{models.NotifContentRemoved, models.NotifStrikeIssued}, kinds)
}

func TestResolveStrikeSeverityFold(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	expect := map[models.Severity]models.StrikeSeverity{
		models.SeverityCritical: models.StrikeSevere,
		models.SeverityHigh:     models.StrikeMajor,
		models.SeverityMedium:   models.StrikeMinor,
		models.SeverityLow:      models.StrikeMinor,
	}
	for sev, strikeSev := range expect {
		f := newFixture(t)
		flag, _ := f.pendingFlag(t, sev)
		res, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{
			FlagID:      flag.ID,
			Status:      models.FlagRejected,
			IssueStrike: true,
		})
		require.Nil(err)
		require.Equal(strikeSev, res.IssuedStrike.Severity, string(sev))
		require.False(res.ContentDeleted.Attempted)
	}
}

func TestResolveTwice(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	flag, _ := f.pendingFlag(t, models.SeverityMedium)

	_, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{FlagID: flag.ID, Status: models.FlagApproved})
	require.Nil(err)

	_, err = f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{FlagID: flag.ID, Status: models.FlagDeleted})
	require.ErrorIs(err, models.ErrAlreadyResolved)

	stored, err := f.queue.Get(ctx, actor(f.admin), flag.ID)
	require.Nil(err)
	require.Equal(models.FlagApproved, stored.Status)
}

func TestResolveApproveSkipsSideEffects(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	flag, listing := f.pendingFlag(t, models.SeverityHigh)

	res, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{
		FlagID:        flag.ID,
		Status:        models.FlagApproved,
		DeleteContent: true,
		IssueStrike:   true,
	})
	require.Nil(err)
	require.False(res.ContentDeleted.Attempted)
	require.False(res.Strike.Attempted)
	require.False(res.Notification.Attempted)
	require.True(res.Audit.OK())

	exists, err := f.store.Exists(ctx, models.ContentListing, listing)
	require.Nil(err)
	require.True(exists)
}

func TestResolvePartialFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	flag, _ := f.pendingFlag(t, models.SeverityHigh)
	boom := errors.New("content service unavailable")
	f.store.Fail("Delete", boom)

	res, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{
		FlagID:        flag.ID,
		Status:        models.FlagDeleted,
		DeleteContent: true,
		IssueStrike:   true,
	})
	require.Nil(err)
	require.False(res.Complete())
	require.True(res.ContentDeleted.Failed())
	require.ErrorIs(res.ContentDeleted.Err, boom)
	require.True(res.Strike.OK())
	require.True(res.Audit.OK())

	stored, err := f.queue.Get(ctx, actor(f.admin), flag.ID)
	require.Nil(err)
	require.Equal(models.FlagDeleted, stored.Status)
}

func TestResolveStatusUpdateFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	flag, listing := f.pendingFlag(t, models.SeverityHigh)
	boom := errors.New("connection reset")
	f.store.Fail("ResolveFlag", boom)

	_, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{
		FlagID:        flag.ID,
		Status:        models.FlagDeleted,
		DeleteContent: true,
	})
	require.ErrorIs(err, boom)

	exists, err := f.store.Exists(ctx, models.ContentListing, listing)
	require.Nil(err)
	require.True(exists)
}

func TestResolveAuthorization(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	flag, _ := f.pendingFlag(t, models.SeverityHigh)
	req := domain.ResolveRequest{FlagID: flag.ID, Status: models.FlagRejected}

	_, err := f.queue.Resolve(ctx, actor(f.seller), req)
	require.ErrorIs(err, models.ErrPermDenied)

	_, err = f.queue.Resolve(ctx, suspended(f.moderator), req)
	require.ErrorIs(err, models.ErrPermDenied)
	require.ErrorIs(err, models.ErrActorSuspended)

	_, err = f.queue.Resolve(ctx, nil, req)
	require.ErrorIs(err, models.ErrPermDenied)

	stored, err := f.queue.Get(ctx, actor(f.admin), flag.ID)
	require.Nil(err)
	require.Equal(models.FlagPending, stored.Status)
}

func TestResolveValidation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	flag, _ := f.pendingFlag(t, models.SeverityHigh)

	for _, status := range []models.FlagStatus{models.FlagPending, "archived", ""} {
		_, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{FlagID: flag.ID, Status: status})
		require.ErrorIs(err, models.ErrInvalidFormat)
	}

	_, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{FlagID: uuid.New(), Status: models.FlagApproved})
	require.ErrorIs(err, models.ErrNotFound)
}

func TestListFlags(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	first, _ := f.pendingFlag(t, models.SeverityHigh)
	f.pendingFlag(t, models.SeverityLow)

	_, err := f.queue.Resolve(ctx, actor(f.admin), domain.ResolveRequest{FlagID: first.ID, Status: models.FlagApproved})
	require.Nil(err)

	pending, err := f.queue.List(ctx, actor(f.moderator), models.FlagFilter{Status: models.FlagPending})
	require.Nil(err)
	require.Len(pending, 1)
	require.Equal(models.SeverityLow, pending[0].Severity)

	all, err := f.queue.List(ctx, actor(f.moderator), models.FlagFilter{Source: models.SourceAdmin})
	require.Nil(err)
	require.Len(all, 2)

	_, err = f.queue.List(ctx, actor(f.moderator), models.FlagFilter{Status: "bogus"})
	require.ErrorIs(err, models.ErrInvalidFormat)

	_, err = f.queue.List(ctx, actor(f.seller), models.FlagFilter{})
	require.ErrorIs(err, models.ErrPermDenied)
}

func TestCreateManualFlag(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	profile := f.store.AddContent(models.ContentProfile, f.seller.ID)

	flag, err := f.queue.CreateManual(ctx, actor(f.moderator), domain.ManualFlag{
		ContentType: models.ContentProfile,
		ContentID:   profile,
		Reason:      "impersonation",
		Notes:       "claims to be the dean",
	})
	require.Nil(err)
	require.Equal(models.SourceAdmin, flag.Source)
	require.Equal(models.FlagPending, flag.Status)
	require.Equal(models.SeverityMedium, flag.Severity)
	require.Equal(f.seller.ID, flag.UserID)
	require.NotNil(flag.Details.Admin)
	require.Equal(f.moderator.ID, flag.Details.Admin.CreatedBy)

	audit := f.store.AuditEntries()
	require.Equal(models.AuditCreateFlag, audit[len(audit)-1].Action)

	_, err = f.queue.CreateManual(ctx, actor(f.moderator), domain.ManualFlag{
		ContentType: models.ContentProfile,
		ContentID:   uuid.New(),
		Reason:      "impersonation",
	})
	require.ErrorIs(err, models.ErrContentNotFound)

	_, err = f.queue.CreateManual(ctx, actor(f.moderator), domain.ManualFlag{
		ContentType: models.ContentProfile,
		ContentID:   profile,
		Reason:      "  ",
	})
	require.ErrorIs(err, models.ErrInvalidFormat)

	_, err = f.queue.CreateManual(ctx, actor(f.seller), domain.ManualFlag{
		ContentType: models.ContentProfile,
		ContentID:   profile,
		Reason:      "impersonation",
	})
	require.ErrorIs(err, models.ErrPermDenied)
}
