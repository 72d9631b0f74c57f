package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/ratelimit"
)

// Services are the domain entry points served over HTTP.
type Services struct {
	Moderator     *domain.Moderator
	Reports       *domain.ReportAggregator
	Queue         *domain.FlagQueue
	Rules         *domain.RuleAdmin
	Users         *domain.UserAdmin
	Notifications *domain.NotificationService
	// resolves bearer tokens to actors
	UserRepo domain.UserRepo
}

// Limiters may be nil, which disables the limit.
type Limiters struct {
	Reports *ratelimit.Limiter
	Checks  *ratelimit.Limiter
}

type Routes struct {
	config   *models.EnvConfig
	log      zerolog.Logger
	services Services
	limiters Limiters
}

func NewRouter(config *models.EnvConfig, services Services, limiters Limiters, log zerolog.Logger) chi.Router {
	routes := &Routes{
		config:   config,
		log:      log,
		services: services,
		limiters: limiters,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	r.Use(middleware.Recoverer)
	if config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(config.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(routes.Authenticate)
		r.Route("/moderation", routes.ModerationRouter)
		r.With(routes.limit(limiters.Reports)).Post("/reports", routes.postReport)
		r.Route("/notifications", routes.NotificationsRouter)
		r.Route("/admin", func(r chi.Router) {
			r.Route("/flags", routes.FlagsRouter)
			r.Route("/rules", routes.RulesRouter)
			r.Route("/users/{userID}", routes.UsersRouter)
		})
	})
	return r
}

func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		log := zerolog.Ctx(r.Context())
		log.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", reqID)
		})
		next.ServeHTTP(w, r)
	})
}

// limit keys the limiter by the authenticated actor.
func (routes *Routes) limit(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware(func(r *http.Request) string {
		actor := GetActor(r)
		if actor == nil {
			return ""
		}
		return actor.ID.String()
	})
}
