package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

func (routes *Routes) RulesRouter(r chi.Router) {
	r.Get("/", routes.listRules)
	r.Post("/", routes.postRule)
	r.Put("/{ruleID}", routes.putRule)
	r.Delete("/{ruleID}", routes.deleteRule)
}

func (routes *Routes) listRules(w http.ResponseWriter, r *http.Request) {
	all, err := queryBool(r, "includeInactive")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	rules, err := routes.services.Rules.List(r.Context(), GetActor(r), all)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (routes *Routes) postRule(w http.ResponseWriter, r *http.Request) {
	var req models.ProhibitedItemReq
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	rule, err := routes.services.Rules.Create(r.Context(), GetActor(r), req)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (routes *Routes) putRule(w http.ResponseWriter, r *http.Request) {
	ruleID, err := urlUUID(r, "ruleID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	var req models.ProhibitedItemReq
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	rule, err := routes.services.Rules.Update(r.Context(), GetActor(r), ruleID, req)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (routes *Routes) deleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID, err := urlUUID(r, "ruleID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	if err := routes.services.Rules.Deactivate(r.Context(), GetActor(r), ruleID); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
