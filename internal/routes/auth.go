package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

type ContextKey int

const (
	ActorCtxKey ContextKey = iota
)

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for userID, valid for ttl from now.
func SignToken(secret []byte, userID uuid.UUID, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func GetActor(r *http.Request) *models.Actor {
	actor, _ := r.Context().Value(ActorCtxKey).(*models.Actor)
	return actor
}

// Authenticate resolves the bearer token to an actor, loading role and
// suspension from the user store on every request.
func (routes *Routes) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := routes.authenticate(r)
		if err != nil {
			routes.HandleErr(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("actor_id", actor.ID.String())
		})
		ctx := context.WithValue(r.Context(), ActorCtxKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (routes *Routes) authenticate(r *http.Request) (*models.Actor, error) {
	header := r.Header.Get("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if header == "" || raw == header || len(routes.config.JWTSecret) == 0 {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return routes.config.JWTSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnauthenticated, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	user, err := routes.services.UserRepo.GetUser(r.Context(), claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return models.ActorFromUser(user), nil
}
