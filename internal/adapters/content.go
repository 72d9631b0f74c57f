package adapters

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type contentTable struct {
	name        string
	ownerColumn string
}

var contentTables = map[models.ContentType]contentTable{
	models.ContentListing: {"listings", "seller_id"},
	models.ContentMessage: {"messages", "sender_id"},
	models.ContentProfile: {"profiles", "id"},
	models.ContentEvent:   {"events", "organizer_id"},
}

func tableFor(contentType models.ContentType) (contentTable, error) {
	t, ok := contentTables[contentType]
	if !ok {
		return t, fmt.Errorf("content type %q: %w", contentType, models.ErrInvalidFormat)
	}
	return t, nil
}

type contentStore struct {
	db DBTX
}

func NewContentStore(db DBTX) domain.ContentStore {
	return &contentStore{db}
}

func (s *contentStore) Exists(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (bool, error) {
	t, err := tableFor(contentType)
	if err != nil {
		return false, err
	}
	sql, args, _ := psql.Select("1").
		From(t.name).
		Where(sq.Eq{"id": contentID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()

	var exists bool
	err = pgxscan.Get(ctx, s.db, &exists, sql, args...)
	return exists, err
}

func (s *contentStore) OwnerOf(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) (uuid.UUID, error) {
	t, err := tableFor(contentType)
	if err != nil {
		return uuid.Nil, err
	}
	sql, args, _ := psql.Select(t.ownerColumn).
		From(t.name).
		Where(sq.Eq{"id": contentID}).
		ToSql()

	var owner uuid.UUID
	err = s.db.QueryRow(ctx, sql, args...).Scan(&owner)
	if err != nil {
		return uuid.Nil, notFound(err, models.ErrContentNotFound)
	}
	return owner, nil
}

func (s *contentStore) Delete(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) error {
	t, err := tableFor(contentType)
	if err != nil {
		return err
	}
	sql, args, _ := psql.Delete(t.name).
		Where(sq.Eq{"id": contentID}).
		ToSql()

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrContentNotFound
	}
	return nil
}
