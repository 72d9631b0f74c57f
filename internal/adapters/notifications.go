package adapters

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

const notificationsPerUser = 100

// NotificationStore implements both the notifier used by the services and
// the per-user inbox.
type NotificationStore struct {
	db DBTX
}

func NewNotificationStore(db DBTX) *NotificationStore {
	return &NotificationStore{db}
}

func (s *NotificationStore) Notify(ctx context.Context, userID uuid.UUID, kind models.NotifKind, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	sql, args, _ := psql.Insert("notifications").
		Columns("user_id", "kind", "title", "text", "payload").
		Values(userID, kind, kind.Title(), kind.Text(payload), data).
		ToSql()

	_, err = s.db.Exec(ctx, sql, args...)
	return err
}

type notificationRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      models.NotifKind
	Title     string
	Text      string
	Payload   []byte
	CreatedAt time.Time
}

func (s *NotificationStore) ListNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	sql, args, _ := psql.Select("id", "user_id", "kind", "title", "text", "payload", "created_at").
		From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(notificationsPerUser).
		ToSql()

	rows := []notificationRow{}
	err := pgxscan.Select(ctx, s.db, &rows, sql, args...)
	if err != nil {
		return nil, err
	}

	notifs := make([]models.Notification, len(rows))
	for i, row := range rows {
		notifs[i] = models.Notification{
			ID:        row.ID,
			UserID:    row.UserID,
			Kind:      row.Kind,
			Title:     row.Title,
			Text:      row.Text,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Payload) > 0 {
			if err := json.Unmarshal(row.Payload, &notifs[i].Payload); err != nil {
				return nil, err
			}
		}
	}
	return notifs, nil
}

func (s *NotificationStore) DeleteNotification(ctx context.Context, userID uuid.UUID, notifID uuid.UUID) error {
	sql, args, _ := psql.Delete("notifications").
		Where(sq.Eq{"id": notifID, "user_id": userID}).
		ToSql()

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
