package companies

import (
	"net/http"

	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

const maxLogoBytes = 5 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c, err := h.svc.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cs, err := h.svc.Settings(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cs)
}

func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in SettingsInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	cs, err := h.svc.UpdateSettings(r.Context(), ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cs)
}

// UploadLogo expects a multipart form with the image in "file".
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	url, err := h.svc.SaveLogo(r.Context(), ps.ByName("id"), file)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"logo_url": url})
}
