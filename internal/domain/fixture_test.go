package domain_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/adapters/memstore"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
)

type fixture struct {
	store *memstore.Store
	clock *clock.Mock

	admin     models.User
	moderator models.User
	seller    models.User
	buyers    []models.User

	queue    *domain.FlagQueue
	reports  *domain.ReportAggregator
	rules    *domain.RuleAdmin
	users    *domain.UserAdmin
	moderate *domain.Moderator
	notifs   *domain.NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := memstore.New(clk)
	repos := store.Repos()
	log := zerolog.Nop()

	f := &fixture{
		store:     store,
		clock:     clk,
		admin:     store.AddUser("admin", models.RoleAdmin),
		moderator: store.AddUser("moderator", models.RoleModerator),
		seller:    store.AddUser("seller", models.RoleUser),
		queue:     domain.NewFlagQueue(repos, clk, log),
		reports:   domain.NewReportAggregator(repos, log, true),
		rules:     domain.NewRuleAdmin(repos, log),
		users:     domain.NewUserAdmin(repos, clk, log),
		moderate:  domain.NewModerator(repos, moderation.NewEngine(store, log), log),
		notifs:    domain.NewNotificationService(repos),
	}
	for _, name := range []string{"buyer1", "buyer2", "buyer3", "buyer4"} {
		f.buyers = append(f.buyers, store.AddUser(name, models.RoleUser))
	}
	return f
}

func actor(u models.User) *models.Actor {
	return models.ActorFromUser(&u)
}

func suspended(u models.User) *models.Actor {
	a := models.ActorFromUser(&u)
	a.IsSuspended = true
	return a
}
