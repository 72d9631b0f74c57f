package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (routes *Routes) NotificationsRouter(r chi.Router) {
	r.Get("/", routes.listNotifications)
	r.Delete("/{notifID}", routes.deleteNotification)
}

func (routes *Routes) listNotifications(w http.ResponseWriter, r *http.Request) {
	notifs, err := routes.services.Notifications.List(r.Context(), GetActor(r))
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifs)
}

func (routes *Routes) deleteNotification(w http.ResponseWriter, r *http.Request) {
	notifID, err := urlUUID(r, "notifID")
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	err = routes.services.Notifications.Delete(r.Context(), GetActor(r), notifID)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
