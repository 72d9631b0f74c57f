// Package memstore keeps every domain port in memory. It backs the tests and
// the CLI commands that run without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type contentKey struct {
	contentType models.ContentType
	contentID   uuid.UUID
}

type Store struct {
	mu    sync.Mutex
	clock clock.Clock

	users         map[uuid.UUID]models.User
	content       map[contentKey]uuid.UUID
	rules         []models.ProhibitedItem
	flags         []models.FlaggedContent
	reports       []models.UserReport
	strikes       []models.UserStrike
	audit         []models.AuditEntry
	notifications []models.Notification

	failures map[string]error
}

func New(clk clock.Clock) *Store {
	return &Store{
		clock:    clk,
		users:    map[uuid.UUID]models.User{},
		content:  map[contentKey]uuid.UUID{},
		failures: map[string]error{},
	}
}

// Repos exposes the store as every port at once.
func (s *Store) Repos() domain.Repos {
	return domain.Repos{
		Content:       s,
		Rules:         s,
		Flags:         s,
		Reports:       s,
		Strikes:       s,
		Audit:         s,
		Users:         s,
		Notifier:      s,
		Notifications: s,
	}
}

// Fail makes every later call of the named method return err. A nil err
// clears it.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// must be called with s.mu held
func (s *Store) failure(method string) error {
	return s.failures[method]
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// Users

func (s *Store) AddUser(name string, role models.Role) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     name + "@example.edu",
		Role:      role,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("GetUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *Store) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SetRole"); err != nil {
		return err
	}
	u, ok := s.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.Role = role
	s.users[userID] = u
	return nil
}

func (s *Store) SetSuspended(ctx context.Context, userID uuid.UUID, suspended bool, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SetSuspended"); err != nil {
		return err
	}
	u, ok := s.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.IsSuspended = suspended
	u.SuspendedReason.String, u.SuspendedReason.Valid = reason, suspended && reason != ""
	u.SuspendedAt.Time, u.SuspendedAt.Valid = at, suspended
	s.users[userID] = u
	return nil
}

// Content

func (s *Store) AddContent(contentType models.ContentType, owner uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.content[contentKey{contentType, id}] = owner
	return id
}

func (s *Store) Exists(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Exists"); err != nil {
		return false, err
	}
	_, ok := s.content[contentKey{contentType, contentID}]
	return ok, nil
}

func (s *Store) OwnerOf(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("OwnerOf"); err != nil {
		return uuid.Nil, err
	}
	owner, ok := s.content[contentKey{contentType, contentID}]
	if !ok {
		return uuid.Nil, models.ErrContentNotFound
	}
	return owner, nil
}

func (s *Store) Delete(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Delete"); err != nil {
		return err
	}
	key := contentKey{contentType, contentID}
	if _, ok := s.content[key]; !ok {
		return models.ErrContentNotFound
	}
	delete(s.content, key)
	return nil
}

// Rules

func (s *Store) ActiveRules(ctx context.Context) ([]models.ProhibitedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ActiveRules"); err != nil {
		return nil, err
	}
	res := []models.ProhibitedItem{}
	for _, r := range s.rules {
		if r.IsActive {
			res = append(res, r)
		}
	}
	return res, nil
}

func (s *Store) ListRules(ctx context.Context, includeInactive bool) ([]models.ProhibitedItem, error) {
	if !includeInactive {
		return s.ActiveRules(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProhibitedItem{}, s.rules...), nil
}

func (s *Store) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.ProhibitedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.ID == ruleID {
			return &r, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) CreateRule(ctx context.Context, item *models.ProhibitedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateRule"); err != nil {
		return err
	}
	item.ID = uuid.New()
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt
	s.rules = append(s.rules, *item)
	return nil
}

func (s *Store) UpdateRule(ctx context.Context, item *models.ProhibitedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rules {
		if r.ID == item.ID {
			item.UpdatedAt = s.now()
			s.rules[i] = *item
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *Store) DeactivateRule(ctx context.Context, ruleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rules {
		if r.ID == ruleID {
			s.rules[i].IsActive = false
			s.rules[i].UpdatedAt = s.now()
			return nil
		}
	}
	return models.ErrNotFound
}

// Flags

func (s *Store) CreateFlag(ctx context.Context, flag *models.FlaggedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateFlag"); err != nil {
		return err
	}
	flag.ID = uuid.New()
	flag.CreatedAt = s.now()
	flag.UpdatedAt = flag.CreatedAt
	s.flags = append(s.flags, *flag)
	return nil
}

func (s *Store) GetFlag(ctx context.Context, flagID uuid.UUID) (*models.FlaggedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.flags {
		if f.ID == flagID {
			return &f, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) ListFlags(ctx context.Context, filter models.FlagFilter) ([]models.FlaggedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matching := []models.FlaggedContent{}
	for _, f := range s.flags {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.ContentType != "" && f.ContentType != filter.ContentType {
			continue
		}
		if filter.Source != "" && f.Source != filter.Source {
			continue
		}
		matching = append(matching, f)
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})
	if filter.Offset >= uint64(len(matching)) {
		return []models.FlaggedContent{}, nil
	}
	matching = matching[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < uint64(len(matching)) {
		matching = matching[:filter.Limit]
	}
	return matching, nil
}

func (s *Store) FlagExistsFor(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.flags {
		if f.ContentType == contentType && f.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ResolveFlag(ctx context.Context, flagID uuid.UUID, review models.FlagReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ResolveFlag"); err != nil {
		return err
	}
	for i, f := range s.flags {
		if f.ID != flagID {
			continue
		}
		if f.Status != models.FlagPending {
			return models.ErrAlreadyResolved
		}
		reviewer, at := review.ReviewedBy, review.ReviewedAt
		s.flags[i].Status = review.Status
		s.flags[i].ReviewedBy = &reviewer
		s.flags[i].ReviewedAt = &at
		s.flags[i].ReviewNotes = review.Notes
		s.flags[i].UpdatedAt = s.now()
		return nil
	}
	return models.ErrNotFound
}

func (s *Store) Flags() []models.FlaggedContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FlaggedContent{}, s.flags...)
}

// Reports

func (s *Store) ReportExists(ctx context.Context, reporterID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportExists(reporterID, contentType, contentID), nil
}

func (s *Store) reportExists(reporterID uuid.UUID, contentType models.ContentType, contentID uuid.UUID) bool {
	for _, r := range s.reports {
		if r.ReporterID == reporterID && r.ContentType == contentType && r.ContentID == contentID {
			return true
		}
	}
	return false
}

func (s *Store) CreateReport(ctx context.Context, report *models.UserReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateReport"); err != nil {
		return err
	}
	// stands in for the unique constraint
	if s.reportExists(report.ReporterID, report.ContentType, report.ContentID) {
		return models.ErrDuplicateReport
	}
	report.ID = uuid.New()
	report.CreatedAt = s.now()
	s.reports = append(s.reports, *report)
	return nil
}

func (s *Store) CountReports(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reports {
		if r.ContentType == contentType && r.ContentID == contentID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ReportCategories(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) ([]models.ReportCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[models.ReportCategory]bool{}
	res := []models.ReportCategory{}
	for _, r := range s.reports {
		if r.ContentType == contentType && r.ContentID == contentID && !seen[r.Category] {
			seen[r.Category] = true
			res = append(res, r.Category)
		}
	}
	return res, nil
}

// Strikes

func (s *Store) CreateStrike(ctx context.Context, strike *models.UserStrike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateStrike"); err != nil {
		return err
	}
	strike.ID = uuid.New()
	strike.CreatedAt = s.now()
	s.strikes = append(s.strikes, *strike)
	return nil
}

func (s *Store) ListStrikes(ctx context.Context, userID uuid.UUID) ([]models.UserStrike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []models.UserStrike{}
	for _, st := range s.strikes {
		if st.UserID == userID {
			res = append(res, st)
		}
	}
	return res, nil
}

func (s *Store) CountActiveStrikes(ctx context.Context, userID uuid.UUID) (int, error) {
	strikes, err := s.ListStrikes(ctx, userID)
	n := 0
	for _, st := range strikes {
		if st.IsActive {
			n++
		}
	}
	return n, err
}

// Audit

func (s *Store) Append(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Append"); err != nil {
		return err
	}
	entry.ID = uuid.New()
	entry.CreatedAt = s.now()
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *Store) AuditEntries() []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry{}, s.audit...)
}

// Notifications

func (s *Store) Notify(ctx context.Context, userID uuid.UUID, kind models.NotifKind, payload map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("Notify"); err != nil {
		return err
	}
	s.notifications = append(s.notifications, models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     kind.Title(),
		Text:      kind.Text(payload),
		Payload:   payload,
		CreatedAt: s.now(),
	})
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListNotifications"); err != nil {
		return nil, err
	}
	res := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			res = append(res, n)
		}
	}
	return res, nil
}

func (s *Store) DeleteNotification(ctx context.Context, userID uuid.UUID, notifID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == notifID && n.UserID == userID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}
