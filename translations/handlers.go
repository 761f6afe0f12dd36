package translations

import (
	"net/http"

	"cruiseops/models"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), Filter{Lang: q.Get("lang"), Namespace: q.Get("namespace")})
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in models.Translation
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	t, err := h.svc.Upsert(r.Context(), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Delete(r.Context(), ps.ByName("lang"), ps.ByName("namespace"), ps.ByName("key")); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bundle serves GET /translations/bundle/:lang/:namespace without authentication.
func (h *Handler) Bundle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.svc.Bundle(r.Context(), ps.ByName("lang"), ps.ByName("namespace"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	utils.RespondWithJSON(w, http.StatusOK, b)
}
