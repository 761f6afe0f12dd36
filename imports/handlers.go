package imports

import (
	"errors"
	"net/http"

	"cruiseops/audit"
	"cruiseops/middleware"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

const maxUpload = 16 << 20

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

// Workbook serves POST /api/imports/workbook?dry_run= with the xlsx in the "file" field.
func (h *Handler) Workbook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Expected multipart form with a file field")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ctx := r.Context()
	dryRun := utils.QueryBool(r, "dry_run")
	res, err := h.svc.Import(ctx, middleware.TenantFrom(ctx), file, dryRun)
	var verr *ValidationError
	if errors.As(err, &verr) {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{"error": verr.Error(), "issues": verr.Issues})
		return
	}
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	if !dryRun {
		h.audit.Record(ctx, "import.workbook", "workbook", "", map[string]any{
			"itineraries": res.Itineraries, "cabin_categories": res.Categories, "cabins": res.Cabins,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}
