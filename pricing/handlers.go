package pricing

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

// Quote works with or without a tenant.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in QuoteInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	q, err := h.svc.Quote(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, q)
}

func (h *Handler) GetOverrides(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	ov, err := h.svc.Overrides(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ov)
}

func (h *Handler) SetCabinMultiplier(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		CabinType  string  `json:"cabin_type"`
		Multiplier float64 `json:"multiplier"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	company := middleware.CompanyFrom(ctx)
	ov, err := h.svc.SetCabinMultiplier(ctx, middleware.TenantFrom(ctx), company, body.CabinType, body.Multiplier)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.cabin_multiplier.set", "pricing_overrides", company,
		map[string]any{"cabin_type": body.CabinType, "multiplier": body.Multiplier})
	utils.RespondWithJSON(w, http.StatusOK, ov)
}

func (h *Handler) SetBaseFare(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Paxtype string `json:"paxtype"`
		Amount  *int64 `json:"amount"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	if body.Amount == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "amount is required")
		return
	}
	ctx := r.Context()
	company := middleware.CompanyFrom(ctx)
	ov, err := h.svc.SetBaseFare(ctx, middleware.TenantFrom(ctx), company, body.Paxtype, *body.Amount)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.base_fare.set", "pricing_overrides", company,
		map[string]any{"paxtype": body.Paxtype, "amount": *body.Amount})
	utils.RespondWithJSON(w, http.StatusOK, ov)
}

func (h *Handler) SetDemandMultiplier(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Multiplier *float64 `json:"multiplier"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	company := middleware.CompanyFrom(ctx)
	ov, err := h.svc.SetDemandMultiplier(ctx, middleware.TenantFrom(ctx), company, body.Multiplier)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.demand_multiplier.set", "pricing_overrides", company, nil)
	utils.RespondWithJSON(w, http.StatusOK, ov)
}

func (h *Handler) DeleteOverrides(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	company := ps.ByName("company")
	if company != middleware.CompanyFrom(ctx) {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if err := h.svc.DeleteOverrides(ctx, middleware.TenantFrom(ctx), company); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.overrides.delete", "pricing_overrides", company, nil)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

func (h *Handler) ListCategoryPrices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.CategoryPrices(ctx, middleware.TenantFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"company_id": middleware.CompanyFrom(ctx), "items": items})
}

func (h *Handler) upsertCategoryPrices(w http.ResponseWriter, r *http.Request, in []CategoryPriceInput) {
	ctx := r.Context()
	items, err := h.svc.UpsertCategoryPrices(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.category_prices.upsert", "category_price", "", map[string]any{"count": len(in)})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"company_id": middleware.CompanyFrom(ctx), "items": items})
}

func (h *Handler) UpsertCategoryPrice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CategoryPriceInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.upsertCategoryPrices(w, r, []CategoryPriceInput{in})
}

func (h *Handler) BulkUpsertCategoryPrices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in []CategoryPriceInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.upsertCategoryPrices(w, r, in)
}

func (h *Handler) ListPriceCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.PriceCategories(ctx, middleware.TenantFrom(ctx), r.URL.Query().Get("channel"), utils.QueryBool(r, "active_only"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) CreatePriceCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in PriceCategoryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.CreatePriceCategory(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.price_category.create", "price_category", c.Code, nil)
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) PatchPriceCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in PriceCategoryPatch
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	c, err := h.svc.PatchPriceCategory(ctx, middleware.TenantFrom(ctx), ps.ByName("code"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.price_category.update", "price_category", c.Code, nil)
	utils.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) DeletePriceCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	code := ps.ByName("code")
	if err := h.svc.DeletePriceCategory(ctx, middleware.TenantFrom(ctx), code); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.price_category.delete", "price_category", utils.LowerCode(code), nil)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

func (h *Handler) ReorderPriceCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Codes []string `json:"codes"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	items, err := h.svc.ReorderPriceCategories(ctx, middleware.TenantFrom(ctx), body.Codes)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.price_category.reorder", "price_category", "", map[string]any{"codes": body.Codes})
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) ListCruisePrices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.CruisePrices(ctx, middleware.TenantFrom(ctx), r.URL.Query().Get("sailing_id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) BulkUpsertCruisePrices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in []CruisePriceInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	items, err := h.svc.UpsertCruisePrices(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.cruise_prices.upsert", "sailing", in[0].SailingID, map[string]any{"count": len(in)})
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) ExportCruisePrices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	sailingID := r.URL.Query().Get("sailing_id")
	items, err := h.svc.CruisePrices(ctx, middleware.TenantFrom(ctx), sailingID)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	switch utils.LowerCode(r.URL.Query().Get("format")) {
	case "", "json":
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"company_id": middleware.CompanyFrom(ctx),
			"sailing_id": sailingID,
			"items":      items,
		})
	case "csv":
		data, err := CruisePricesCSV(items)
		if err != nil {
			utils.RespondWithErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="cruise-prices-`+sailingID+`.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "format must be json or csv")
	}
}

func (h *Handler) ListFXRates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.FXRates(ctx, middleware.TenantFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) UpsertFXRate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in FXInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	rate, err := h.svc.UpsertFXRate(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.fx_rate.upsert", "fx_rate", rate.Base+"->"+rate.Quote, map[string]any{"rate": rate.Rate})
	utils.RespondWithJSON(w, http.StatusOK, rate)
}

func (h *Handler) DeleteFXRate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	base, quote := ps.ByName("base"), ps.ByName("quote")
	if err := h.svc.DeleteFXRate(ctx, middleware.TenantFrom(ctx), base, quote); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "pricing.fx_rate.delete", "fx_rate", utils.UpperCode(base)+"->"+utils.UpperCode(quote), nil)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}
