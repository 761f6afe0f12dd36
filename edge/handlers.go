package edge

import (
	"net/http"

	"cruiseops/middleware"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Cruises(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Cruises(ctx, middleware.TenantFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": items})
}

func (h *Handler) MobileAgenda(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	q := r.URL.Query()
	agenda, err := h.svc.MobileAgenda(ctx, middleware.TenantFrom(ctx), q.Get("customer_id"), q.Get("sailing_id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, agenda)
}
