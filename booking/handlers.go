package booking

import (
	"net/http"

	"cruiseops/audit"
	"cruiseops/middleware"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc    *Service
	signer Signer
	audit  audit.Recorder
}

func NewHandler(svc *Service, signer Signer, rec audit.Recorder) *Handler {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Handler{svc: svc, signer: signer, audit: rec}
}

func (h *Handler) Hold(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in HoldInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	v, err := h.svc.Hold(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "booking.hold", "booking", v.ID, map[string]any{"sailing_id": v.SailingID, "total": v.QuoteTotal})
	utils.RespondWithJSON(w, http.StatusCreated, v)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	v, err := h.svc.Get(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	opts := utils.ParseQueryOptions(r)
	ctx := r.Context()
	items, err := h.svc.List(ctx, middleware.TenantFrom(ctx), Filter{
		Status:     utils.LowerCode(q.Get("status")),
		CustomerID: q.Get("customer_id"),
		SailingID:  q.Get("sailing_id"),
		Limit:      opts.Limit,
		Skip:       opts.Skip(),
	})
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": items})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		PaymentToken string `json:"payment_token"`
	}
	if err := utils.DecodeOptionalJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	v, err := h.svc.Confirm(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "booking.confirm", "booking", v.ID, map[string]any{"payment_token": body.PaymentToken != ""})
	utils.RespondWithJSON(w, http.StatusOK, v)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := utils.DecodeOptionalJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	v, err := h.svc.Cancel(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx), ps.ByName("id"), body.Reason)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "booking.cancel", "booking", v.ID, map[string]any{"reason": body.Reason})
	utils.RespondWithJSON(w, http.StatusOK, v)
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	data, v, err := h.svc.Document(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), h.signer)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+v.BookingRef+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// VerifyDocument checks a scanned QR payload and returns the current booking.
func (h *Handler) VerifyDocument(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Payload string `json:"payload"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	id, ok := h.signer.Verify(body.Payload)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid document signature")
		return
	}
	ctx := r.Context()
	v, err := h.svc.Get(ctx, middleware.TenantFrom(ctx), id)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": true, "booking": v})
}
