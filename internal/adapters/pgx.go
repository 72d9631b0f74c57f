package adapters

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	jsoniter "github.com/json-iterator/go"
	"gitlab.com/ranfdev/unimarket/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func execTx(ctx context.Context, db DBTX, txFunc func(context.Context, DBTX) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	err = txFunc(ctx, tx)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// notFound turns pgx.ErrNoRows into the given domain error.
func notFound(err error, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return err
}

// NewRepos builds every Postgres backed port over db.
func NewRepos(db DBTX) domain.Repos {
	notifs := NewNotificationStore(db)
	return domain.Repos{
		Content:       NewContentStore(db),
		Rules:         NewRuleRepo(db),
		Flags:         NewFlagRepo(db),
		Reports:       NewReportRepo(db),
		Strikes:       NewStrikeRepo(db),
		Audit:         NewAuditLog(db),
		Users:         NewUserRepo(db),
		Notifier:      notifs,
		Notifications: notifs,
	}
}
