package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

func (routes *Routes) FlagsRouter(r chi.Router) {
	r.Get("/", routes.listFlags)
	r.Post("/", routes.postFlag)
	r.Get("/{flagID}", routes.getFlag)
	r.Post("/{flagID}/resolve", routes.resolveFlag)
}

func flagFilter(r *http.Request) (models.FlagFilter, error) {
	q := r.URL.Query()
	filter := models.FlagFilter{
		Status:      models.FlagStatus(q.Get("status")),
		ContentType: models.ContentType(q.Get("contentType")),
		Source:      models.FlagSource(q.Get("source")),
	}
	var err error
	if filter.Limit, err = queryUint(r, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryUint(r, "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (routes *Routes) listFlags(w http.ResponseWriter, r *http.Request) {
	filter, err := flagFilter(r)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	flags, err := routes.services.Queue.List(r.Context(), GetActor(r), filter)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

func (routes *Routes) postFlag(w http.ResponseWriter, r *http.Request) {
	var req domain.ManualFlag
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	flag, err := routes.services.Queue.CreateManual(r.Context(), GetActor(r), req)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, flag)
}

func (routes *Routes) getFlag(w http.ResponseWriter, r *http.Request) {
	flagID, err := urlUUID(r, "flagID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	flag, err := routes.services.Queue.Get(r.Context(), GetActor(r), flagID)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flag)
}

func (routes *Routes) resolveFlag(w http.ResponseWriter, r *http.Request) {
	flagID, err := urlUUID(r, "flagID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	var req domain.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	req.FlagID = flagID
	res, err := routes.services.Queue.Resolve(r.Context(), GetActor(r), req)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
