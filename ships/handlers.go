package ships

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

func (h *Handler) CreateShip(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in ShipInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sh, err := h.svc.CreateShip(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "ship.create", "ship", sh.ID, map[string]any{"code": sh.Code})
	utils.RespondWithJSON(w, http.StatusCreated, sh)
}

func (h *Handler) ListShips(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Ships(ctx, middleware.TenantFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) GetShip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	sh, err := h.svc.Ship(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sh)
}

func (h *Handler) PatchShip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p ShipPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sh, err := h.svc.PatchShip(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), p)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "ship.update", "ship", sh.ID, nil)
	utils.RespondWithJSON(w, http.StatusOK, sh)
}

func (h *Handler) AddAmenity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in AmenityInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sh, err := h.svc.AddAmenity(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, sh)
}

func (h *Handler) AddMaintenanceRecord(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in MaintenanceInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	sh, err := h.svc.AddMaintenanceRecord(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "ship.maintenance", "ship", sh.ID, map[string]any{"status": sh.Status})
	utils.RespondWithJSON(w, http.StatusCreated, sh)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in CategoryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.CreateCategory(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Categories(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateCabin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in CabinInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.CreateCabin(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListCabins(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := r.URL.Query()
	f := CabinFilter{Status: q.Get("status"), CategoryID: q.Get("category_id")}
	if raw := q.Get("deck"); raw != "" {
		deck, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "deck must be an integer")
			return
		}
		f.Deck = &deck
	}
	ctx := r.Context()
	items, err := h.svc.Cabins(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), f)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) PatchCabin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p CabinPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.PatchCabin(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), ps.ByName("cabinId"), p)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCapability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in CapabilityInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.CreateCapability(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListCapabilities(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Capabilities(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in RestaurantInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	res, err := h.svc.CreateRestaurant(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Restaurants(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateShorex(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in ShorexInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	x, err := h.svc.CreateShorex(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "shorex.create", "shore_excursion", x.ID, map[string]any{"code": x.Code})
	utils.RespondWithJSON(w, http.StatusCreated, x)
}

func (h *Handler) ListShorex(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.ShoreExcursions(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), ShorexFilter{
		PortCode:   r.URL.Query().Get("port_code"),
		ActiveOnly: utils.QueryBool(r, "active_only"),
	})
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) UpsertShorexPrices(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Prices []ShorexPriceInput `json:"prices"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	x, err := h.svc.UpsertShorexPrices(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), ps.ByName("shorexId"), body.Prices)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, x)
}
