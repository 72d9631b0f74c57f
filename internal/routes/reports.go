package routes

import (
	"net/http"

	"gitlab.com/ranfdev/unimarket/internal/models"
)

func (routes *Routes) postReport(w http.ResponseWriter, r *http.Request) {
	var req models.ReportReq
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	receipt, err := routes.services.Reports.Submit(r.Context(), GetActor(r), req)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}
