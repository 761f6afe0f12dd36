package staff

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

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in UserInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	u, err := h.svc.CreateUser(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "staff.create", "staff_user", u.ID, map[string]any{"role": u.Role})
	utils.RespondWithJSON(w, http.StatusCreated, u)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Users(ctx, middleware.TenantFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p UserPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	u, err := h.svc.PatchUser(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), p)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "staff.update", "staff_user", u.ID, map[string]any{"role": u.Role, "disabled": u.Disabled})
	utils.RespondWithJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in GroupInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	g, err := h.svc.CreateGroup(ctx, middleware.TenantFrom(ctx), in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "group.create", "staff_group", g.ID, map[string]any{"code": g.Code})
	utils.RespondWithJSON(w, http.StatusCreated, g)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Groups(ctx, middleware.TenantFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) PatchGroup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p GroupPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	g, err := h.svc.PatchGroup(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), p)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, g)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	m, err := h.svc.AddMember(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), body.UserID)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "group.add_member", "staff_group", m.GroupID, map[string]any{"user_id": m.UserID})
	utils.RespondWithJSON(w, http.StatusCreated, m)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Members(ctx, middleware.TenantFrom(ctx), ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	if err := h.svc.RemoveMember(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), ps.ByName("userId")); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.audit.Record(ctx, "group.remove_member", "staff_group", ps.ByName("id"), map[string]any{"user_id": ps.ByName("userId")})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Announce(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in AnnouncementInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	ctx := r.Context()
	a, err := h.svc.Announce(ctx, middleware.TenantFrom(ctx), middleware.PrincipalFrom(ctx).UserID, in)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, a)
}

func (h *Handler) Announcements(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	items, err := h.svc.Announcements(ctx, middleware.TenantFrom(ctx), middleware.PrincipalFrom(ctx).UserID)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	if err := h.svc.MarkRead(ctx, middleware.TenantFrom(ctx), ps.ByName("id"), middleware.PrincipalFrom(ctx).UserID); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
