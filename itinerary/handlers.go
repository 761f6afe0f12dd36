package itinerary

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

func lang(r *http.Request) string {
	return utils.LowerCode(r.URL.Query().Get("lang"))
}

// POST /api/ports
func (h *Handler) UpsertPort(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in PortInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	p, err := h.svc.UpsertPort(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// GET /api/ports
func (h *Handler) ListPorts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	ports, err := h.svc.Ports(ctx, middleware.TenantFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	if l := lang(r); l != "" {
		out := make([]PortView, 0, len(ports))
		for _, p := range ports {
			out = append(out, Localized(p, l))
		}
		utils.RespondWithJSON(w, http.StatusOK, out)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ports)
}

// GET /api/ports/:code
func (h *Handler) GetPort(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	p, err := h.svc.Port(ctx, middleware.TenantFrom(ctx), ps.ByName("code"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// POST /api/itineraries
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in ItineraryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	tenant := middleware.TenantFrom(ctx)
	it, err := h.svc.Create(ctx, tenant, in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "itinerary.create", "itinerary", it.ID, map[string]any{"code": it.Code})
	v, err := h.svc.Render(ctx, tenant, it, lang(r))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, v)
}

// PUT /api/itineraries/:id
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in ItineraryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	tenant := middleware.TenantFrom(ctx)
	it, err := h.svc.Update(ctx, tenant, ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "itinerary.update", "itinerary", it.ID, nil)
	v, err := h.svc.Render(ctx, tenant, it, lang(r))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

// GET /api/itineraries?q=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	tenant := middleware.TenantFrom(ctx)
	items, err := h.svc.List(ctx, tenant, r.URL.Query().Get("q"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	out := make([]View, 0, len(items))
	for _, it := range items {
		v, err := h.svc.Render(ctx, tenant, it, lang(r))
		if err != nil {
			utils.RespondWithErr(w, err)
			return
		}
		out = append(out, v)
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/itineraries/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	tenant := middleware.TenantFrom(ctx)
	it, err := h.svc.Get(ctx, tenant, ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	v, err := h.svc.Render(ctx, tenant, it, lang(r))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

// GET /api/itineraries/:id/compute?start_date=
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start := r.URL.Query().Get("start_date")
	if start == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "start_date is required")
		return
	}
	ctx := r.Context()
	it, err := h.svc.Get(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	d, err := Compute(it, start)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, d)
}

// POST /api/itineraries/:id/sailings
func (h *Handler) CreateSailing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in SailingInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sl, err := h.svc.CreateSailing(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "sailing.create", "sailing", sl.ID, map[string]any{"itinerary_id": sl.ItineraryID})
	utils.RespondWithJSON(w, http.StatusCreated, sl)
}

// GET /api/itineraries/:id/sailings
func (h *Handler) Sailings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Sailings(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}
