package settings

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

// GetPreferences serves GET /api/staff/me/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	p, err := h.svc.Get(ctx, middleware.TenantFrom(ctx), middleware.PrincipalFrom(ctx).UserID)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var data map[string]any
	if err := utils.DecodeJSON(r, &data); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	p, err := h.svc.Replace(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), middleware.PrincipalFrom(ctx).UserID, data)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) PatchPreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var patch map[string]any
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	p, err := h.svc.Merge(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), middleware.PrincipalFrom(ctx).UserID, patch)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
