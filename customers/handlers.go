package customers

import (
	"net/http"
	"strconv"

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
	var in CustomerInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.Create(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "customer.create", "customer", c.ID, nil)
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	c, err := h.svc.Get(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p CustomerPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.Patch(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), p)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "customer.update", "customer", c.ID, nil)
	utils.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	ctx := r.Context()
	items, err := h.svc.Search(ctx, middleware.TenantFrom(ctx), q.Get("q"), limit)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) AddPassenger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in PassengerInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	p, err := h.svc.AddPassenger(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListPassengers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Passengers(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) PatchPassenger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in PassengerInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	p, err := h.svc.PatchPassenger(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), ps.ByName("passengerId"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePassenger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	if err := h.svc.DeletePassenger(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), ps.ByName("passengerId")); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "passenger.delete", "passenger", ps.ByName("passengerId"), map[string]any{"customer_id": ps.ByName("id")})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Bookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Bookings(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}
