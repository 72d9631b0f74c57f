package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gitlab.com/ranfdev/unimarket/internal/domain"
	"gitlab.com/ranfdev/unimarket/internal/models"
	"gitlab.com/ranfdev/unimarket/internal/moderation"
)

func (routes *Routes) ModerationRouter(r chi.Router) {
	r.Use(routes.limit(routes.limiters.Checks))
	r.Post("/check", routes.postCheck)
	r.Post("/score", routes.postScore)
}

// Submitters only get the public part of the verdict.
func (routes *Routes) postCheck(w http.ResponseWriter, r *http.Request) {
	var sub domain.Submission
	if err := decodeJSON(r, &sub); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	verdict, err := routes.services.Moderator.Check(r.Context(), GetActor(r), sub)
	if err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict.Public)
}

type scoreReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
}

type scoreRes struct {
	Score    int `json:"score"`
	MaxScore int `json:"maxScore"`
}

func (routes *Routes) postScore(w http.ResponseWriter, r *http.Request) {
	var req scoreReq
	if err := decodeJSON(r, &req); err != nil {
		routes.HandleErr(w, r, err)
		return
	}
	if req.PriceCents < 0 {
		routes.HandleErr(w, r, models.ErrValidation{Field: "priceCents", Problem: "negative"})
		return
	}
	if len(req.Title)+len(req.Description) > domain.MaxSubmissionLen {
		routes.HandleErr(w, r, models.ErrValidation{Field: "description", Problem: "too long"})
		return
	}
	writeJSON(w, http.StatusOK, scoreRes{
		Score:    moderation.CalculateSpamScore(req.Title, req.Description, req.PriceCents),
		MaxScore: moderation.MaxSpamScore,
	})
}
