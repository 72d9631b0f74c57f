package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

func (routes *Routes) UsersRouter(r chi.Router) {
	r.Put("/role", routes.putRole)
	r.Put("/suspension", routes.putSuspension)
	r.Get("/strikes", routes.listStrikes)
}

type roleReq struct {
	Role models.Role `json:"role"`
}

type suspensionReq struct {
	Suspended bool   `json:"suspended"`
	Reason    string `json:"reason"`
}

type strikesRes struct {
	Strikes     []models.UserStrike `json:"strikes"`
	ActiveCount int                 `json:"activeCount"`
}

func (routes *Routes) putRole(w http.ResponseWriter, r *http.Request) {
	userID, err := urlUUID(r, "userID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	var req roleReq
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	if err := routes.services.Users.SetRole(r.Context(), GetActor(r), userID, req.Role); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (routes *Routes) putSuspension(w http.ResponseWriter, r *http.Request) {
	userID, err := urlUUID(r, "userID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	var req suspensionReq
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	err = routes.services.Users.SetSuspended(r.Context(), GetActor(r), userID, req.Suspended, req.Reason)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (routes *Routes) listStrikes(w http.ResponseWriter, r *http.Request) {
	userID, err := urlUUID(r, "userID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	actor := GetActor(r)
	strikes, err := routes.services.Users.ListStrikes(r.Context(), actor, userID)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	n, err := routes.services.Users.ActiveStrikeCount(r.Context(), actor, userID)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, strikesRes{Strikes: strikes, ActiveCount: n})
}
