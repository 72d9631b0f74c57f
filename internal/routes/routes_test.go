package routes

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gitlab.com/ranfdev/unimarket/internal/adapters/memstore"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
	"gitlab.com/ranfdev/unimarket/internal/ratelimit"
)

var testSecret = []byte("test-secret")

type env struct {
	t      *testing.T
	store  *memstore.Store
	router chi.Router

	admin     models.User
	moderator models.User
	seller    models.User
	buyers    []models.User
}

func newEnv(t *testing.T, limiters Limiters) *env {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := memstore.New(clk)
	repos := store.Repos()
	log := zerolog.Nop()

	services := Services{
		Moderator:     domain.NewModerator(repos, moderation.NewEngine(store, log), log),
		Reports:       domain.NewReportAggregator(repos, log, true),
		Queue:         domain.NewFlagQueue(repos, clk, log),
		Rules:         domain.NewRuleAdmin(repos, log),
		Users:         domain.NewUserAdmin(repos, clk, log),
		Notifications: domain.NewNotificationService(repos),
		UserRepo:      repos.Users,
	}
	config := &models.EnvConfig{JWTSecret: testSecret}
	e := &env{
		t:         t,
		store:     store,
		router:    NewRouter(config, services, limiters, log),
		admin:     store.AddUser("admin", models.RoleAdmin),
		moderator: store.AddUser("moderator", models.RoleModerator),
		seller:    store.AddUser("seller", models.RoleUser),
	}
	for i := 0; i < 3; i++ {
		e.buyers = append(e.buyers, store.AddUser(fmt.Sprintf("buyer%d", i), models.RoleUser))
	}
	return e
}

func token(t *testing.T, userID uuid.UUID) string {
	tok, err := SignToken(testSecret, userID, time.Hour, time.Now())
	require.Nil(t, err)
	return tok
}

func (e *env) do(method, path string, body interface{}, as *models.User) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.Nil(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+token(e.t, as.ID))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res ErrorResponse
	decode(t, rec, &res)
	return res.Code
}

func TestAuthRejectsBadTokens(t *testing.T) {
	e := newEnv(t, Limiters{})

	send := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	otherKey, err := SignToken([]byte("other"), e.seller.ID, time.Hour, time.Now())
	require.Nil(t, err)
	expired, err := SignToken(testSecret, e.seller.ID, time.Hour, time.Now().Add(-2*time.Hour))
	require.Nil(t, err)
	unknown, err := SignToken(testSecret, uuid.New(), time.Hour, time.Now())
	require.Nil(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: e.seller.ID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.Nil(t, err)

	cases := map[string]string{
		"missing":     "",
		"not bearer":  "Basic " + token(t, e.seller.ID),
		"garbage":     "Bearer not-a-jwt",
		"wrong key":   "Bearer " + otherKey,
		"expired":     "Bearer " + expired,
		"unknown":     "Bearer " + unknown,
		"alg none":    "Bearer " + none,
		"empty token": "Bearer ",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := send(header)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "unauthenticated", errCode(t, rec))
		})
	}

	rec := send("Bearer " + token(t, e.seller.ID))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{models.ErrValidation{Field: "x", Problem: "y"}, 400, "invalid_format"},
		{models.ErrInvalidFormat, 400, "invalid_format"},
		{models.ErrPermDenied, 403, "perm_denied"},
		{models.ErrMissingPerms{Perms: []models.Perm{models.PermManageRole}}, 403, "perm_denied"},
		{models.ErrActorSuspended, 403, "account_suspended"},
		{models.ErrSelfAction, 403, "self_action"},
		{models.ErrNotFound, 404, "not_found"},
		{models.ErrContentNotFound, 404, "not_found"},
		{models.ErrDuplicateReport, 409, "duplicate_report"},
		{fmt.Errorf("wrapped: %w", models.ErrAlreadyResolved), 409, "already_resolved"},
		{context.DeadlineExceeded, 500, "internal"},
	}
	for _, c := range cases {
		status, code := classify(c.err)
		require.Equal(t, c.status, status, c.err.Error())
		require.Equal(t, c.code, code, c.err.Error())
	}
}

func TestInternalErrorsAreHidden(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})
	e.store.Fail("ListNotifications", fmt.Errorf("connection reset by peer"))

	rec := e.do(http.MethodGet, "/api/notifications", nil, &e.seller)
	require.Equal(http.StatusInternalServerError, rec.Code)
	require.NotContains(rec.Body.String(), "connection reset")
}

func TestCheckEndpoint(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})
	listing := e.store.AddContent(models.ContentListing, e.seller.ID)
	price := int64(2500)

	rec := e.do(http.MethodPost, "/api/moderation/check", domain.Submission{
		ContentType: models.ContentListing,
		ContentID:   listing,
		Title:       "Calculus textbook",
		Body:        "Lightly used, pick up on campus.",
		PriceCents:  &price,
	}, &e.seller)
	require.Equal(http.StatusOK, rec.Code)
	var clean domain.PublicVerdict
	decode(t, rec, &clean)
	require.Equal(moderation.DecisionAllow, clean.Decision)
	require.Nil(clean.FlagID)
	require.NotNil(clean.SpamScore)

	rec = e.do(http.MethodPost, "/api/moderation/check", domain.Submission{
		ContentType: models.ContentListing,
		ContentID:   listing,
		Title:       "Desk lamp",
		Body:        "Text me at 555-123-4567",
	}, &e.seller)
	require.Equal(http.StatusOK, rec.Code)
	var flagged domain.PublicVerdict
	decode(t, rec, &flagged)
	require.Equal(moderation.DecisionFlagForReview, flagged.Decision)
	require.Contains(flagged.Flags, models.FlagContactInfo)
	require.NotNil(flagged.FlagID)

	rec = e.do(http.MethodPost, "/api/moderation/check", domain.Submission{
		ContentType: models.ContentListing,
		ContentID:   listing,
		Body:        "Text me at 555-123-4567",
	}, &e.buyers[0])
	require.Equal(http.StatusForbidden, rec.Code)
	require.Equal("perm_denied", errCode(t, rec))

	rec = e.do(http.MethodPost, "/api/moderation/check", domain.Submission{
		ContentType: "poll",
		ContentID:   listing,
	}, &e.seller)
	require.Equal(http.StatusBadRequest, rec.Code)
	require.Equal("invalid_format", errCode(t, rec))
}

func TestCheckHidesRulePatterns(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})
	listing := e.store.AddContent(models.ContentListing, e.seller.ID)
	require.Nil(e.store.CreateRule(context.Background(), &models.ProhibitedItem{
		Type:     models.RuleTypeRegex,
		Pattern:  `zz[0-9]top`,
		Severity: models.SeverityCritical,
		Action:   models.ActionAutoReject,
		Category: "weapons",
		IsActive: true,
	}))

	rec := e.do(http.MethodPost, "/api/moderation/check", domain.Submission{
		ContentType: models.ContentListing,
		ContentID:   listing,
		Title:       "zz5top for sale",
	}, &e.seller)
	require.Equal(http.StatusOK, rec.Code)
	require.NotContains(rec.Body.String(), "[0-9]")

	var v domain.PublicVerdict
	decode(t, rec, &v)
	require.Equal(moderation.DecisionAutoReject, v.Decision)
	require.Equal([]domain.MatchedCategory{{Category: "weapons", Severity: models.SeverityCritical}}, v.Categories)
}

func TestScoreEndpoint(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})

	rec := e.do(http.MethodPost, "/api/moderation/score", scoreReq{
		Title:       "FREE STUFF!!!!",
		Description: "short",
	}, &e.seller)
	require.Equal(http.StatusOK, rec.Code)
	var res scoreRes
	decode(t, rec, &res)
	require.Equal(moderation.CalculateSpamScore("FREE STUFF!!!!", "short", 0), res.Score)
	require.Equal(100, res.MaxScore)

	rec = e.do(http.MethodPost, "/api/moderation/score", scoreReq{PriceCents: -1}, &e.seller)
	require.Equal(http.StatusBadRequest, rec.Code)
}

func TestReportsToQueue(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})
	listing := e.store.AddContent(models.ContentListing, e.seller.ID)
	req := models.ReportReq{
		ContentType: models.ContentListing,
		ContentID:   listing,
		Category:    models.ReportScam,
	}

	var receipt domain.ReportReceipt
	for i := range e.buyers {
		rec := e.do(http.MethodPost, "/api/reports", req, &e.buyers[i])
		require.Equal(http.StatusCreated, rec.Code, rec.Body.String())
		receipt = domain.ReportReceipt{}
		decode(t, rec, &receipt)
	}
	require.Equal(domain.ReportThreshold, receipt.ReportCount)
	require.NotNil(receipt.Flag)

	rec := e.do(http.MethodPost, "/api/reports", req, &e.buyers[0])
	require.Equal(http.StatusConflict, rec.Code)
	require.Equal("duplicate_report", errCode(t, rec))

	// Users can't see the queue
	rec = e.do(http.MethodGet, "/api/admin/flags", nil, &e.buyers[0])
	require.Equal(http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodGet, "/api/admin/flags?status=pending&source=user_report", nil, &e.moderator)
	require.Equal(http.StatusOK, rec.Code)
	var flags []models.FlaggedContent
	decode(t, rec, &flags)
	require.Len(flags, 1)
	require.Equal(receipt.Flag.ID, flags[0].ID)

	path := fmt.Sprintf("/api/admin/flags/%s/resolve", receipt.Flag.ID)
	rec = e.do(http.MethodPost, path, domain.ResolveRequest{
		Status:        models.FlagDeleted,
		DeleteContent: true,
		IssueStrike:   true,
	}, &e.moderator)
	require.Equal(http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(rec.Body.String(), `"contentDeleted":{"attempted":true,"ok":true}`)

	rec = e.do(http.MethodPost, path, domain.ResolveRequest{Status: models.FlagApproved}, &e.moderator)
	require.Equal(http.StatusConflict, rec.Code)
	require.Equal("already_resolved", errCode(t, rec))

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/admin/users/%s/strikes", e.seller.ID), nil, &e.seller)
	require.Equal(http.StatusOK, rec.Code)
	var strikes strikesRes
	decode(t, rec, &strikes)
	require.Equal(1, strikes.ActiveCount)
	require.Len(strikes.Strikes, 1)
}

func TestFlagBadParams(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})

	rec := e.do(http.MethodGet, "/api/admin/flags?limit=-3", nil, &e.moderator)
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/admin/flags/not-a-uuid", nil, &e.moderator)
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/admin/flags/"+uuid.NewString(), nil, &e.moderator)
	require.Equal(http.StatusNotFound, rec.Code)
}

func TestRulesEndpoints(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})
	body := models.ProhibitedItemReq{
		Type:     models.RuleTypeKeyword,
		Pattern:  "replica watch",
		Severity: models.SeverityHigh,
		Action:   models.ActionFlag,
		Category: "counterfeit",
	}

	rec := e.do(http.MethodPost, "/api/admin/rules", body, &e.buyers[0])
	require.Equal(http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/admin/rules", body, &e.admin)
	require.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var rule models.ProhibitedItem
	decode(t, rec, &rule)
	require.True(rule.IsActive)

	body.Pattern = "("
	body.Type = models.RuleTypeRegex
	rec = e.do(http.MethodPut, "/api/admin/rules/"+rule.ID.String(), body, &e.admin)
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodDelete, "/api/admin/rules/"+rule.ID.String(), nil, &e.admin)
	require.Equal(http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, "/api/admin/rules?includeInactive=true", nil, &e.admin)
	require.Equal(http.StatusOK, rec.Code)
	var rules []models.ProhibitedItem
	decode(t, rec, &rules)
	require.Len(rules, 1)
	require.False(rules[0].IsActive)
}

func TestUserAdminEndpoints(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, Limiters{})

	rec := e.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%s/role", e.admin.ID), roleReq{Role: models.RoleUser}, &e.admin)
	require.Equal(http.StatusForbidden, rec.Code)
	require.Equal("self_action", errCode(t, rec))

	rec = e.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%s/role", e.seller.ID), roleReq{Role: models.RoleModerator}, &e.moderator)
	require.Equal(http.StatusForbidden, rec.Code)
	require.Equal("perm_denied", errCode(t, rec))

	rec = e.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%s/suspension", e.seller.ID), suspensionReq{
		Suspended: true,
		Reason:    "repeated scams",
	}, &e.moderator)
	require.Equal(http.StatusNoContent, rec.Code)

	// The suspended seller still authenticates but can't act.
	listing := e.store.AddContent(models.ContentListing, e.buyers[0].ID)
	rec = e.do(http.MethodPost, "/api/reports", models.ReportReq{
		ContentType: models.ContentListing,
		ContentID:   listing,
		Category:    models.ReportSpam,
	}, &e.seller)
	require.Equal(http.StatusForbidden, rec.Code)
	require.Equal("account_suspended", errCode(t, rec))

	rec = e.do(http.MethodGet, "/api/notifications", nil, &e.seller)
	require.Equal(http.StatusOK, rec.Code)
	var notifs []models.Notification
	decode(t, rec, &notifs)
	require.Len(notifs, 1)
	require.Equal(models.NotifAccountSuspended, notifs[0].Kind)

	rec = e.do(http.MethodDelete, "/api/notifications/"+notifs[0].ID.String(), nil, &e.seller)
	require.Equal(http.StatusNoContent, rec.Code)
	rec = e.do(http.MethodDelete, "/api/notifications/"+notifs[0].ID.String(), nil, &e.seller)
	require.Equal(http.StatusNotFound, rec.Code)
}

func TestReportRateLimit(t *testing.T) {
	require := require.New(t)
	clk := clock.NewMock()
	e := newEnv(t, Limiters{Reports: ratelimit.New(1, time.Minute, clk)})
	first := e.store.AddContent(models.ContentListing, e.seller.ID)
	second := e.store.AddContent(models.ContentListing, e.seller.ID)

	report := func(id uuid.UUID) *httptest.ResponseRecorder {
		return e.do(http.MethodPost, "/api/reports", models.ReportReq{
			ContentType: models.ContentListing,
			ContentID:   id,
			Category:    models.ReportSpam,
		}, &e.buyers[0])
	}
	require.Equal(http.StatusCreated, report(first).Code)
	require.Equal(http.StatusTooManyRequests, report(second).Code)

	// other users have their own window
	rec := e.do(http.MethodPost, "/api/reports", models.ReportReq{
		ContentType: models.ContentListing,
		ContentID:   second,
		Category:    models.ReportSpam,
	}, &e.buyers[1])
	require.Equal(http.StatusCreated, rec.Code)

	clk.Add(time.Minute)
	require.Equal(http.StatusCreated, report(second).Code)
}
