package sailings

import (
	"net/http"

	"cruiseops/audit"
	"cruiseops/middleware"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc   *Service
	audit audit.Recorder
}

func NewHandler(svc *Service, rec audit.Recorder) *Handler {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Handler{svc: svc, audit: rec}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sl, err := h.svc.Create(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "sailing.create", "sailing", sl.ID, map[string]any{"code": sl.Code})
	utils.RespondWithJSON(w, http.StatusCreated, sl)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	ctx := r.Context()
	items, err := h.svc.List(ctx, middleware.TenantFrom(ctx), Filter{
		ItineraryID: q.Get("itinerary_id"),
		Status:      q.Get("status"),
		ShipID:      q.Get("ship_id"),
	})
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	sl, err := h.svc.Get(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sl)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sl, err := h.svc.SetStatus(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), body.Status)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "sailing.status", "sailing", sl.ID, map[string]any{"status": sl.Status})
	utils.RespondWithJSON(w, http.StatusOK, sl)
}

func (h *Handler) AddPortStop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in PortStopInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sl, err := h.svc.AddPortStop(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sl)
}

func (h *Handler) Itinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	stops, err := h.svc.Itinerary(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), r.URL.Query().Get("lang"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stops)
}
