package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cruiseops/globals"
	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
)

const (
	DevTokenTTL = 60 * time.Minute
	LoginTTL    = 12 * time.Hour
)

// Authenticator checks staff credentials within a tenant.
type Authenticator interface {
	Authenticate(ctx context.Context, tenant, email, password string) (models.StaffUser, error)
}

type Issuer interface {
	IssueToken(sub, role, companyID string, ttl time.Duration) (string, error)
}

type Handler struct {
	users  Authenticator
	issuer Issuer
}

func NewHandler(users Authenticator, issuer Issuer) *Handler {
	return &Handler{users: users, issuer: issuer}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *Handler) respondToken(w http.ResponseWriter, sub, role, companyID string, ttl time.Duration) {
	token, err := h.issuer.IssueToken(sub, role, companyID, ttl)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        role,
		ExpiresIn:   int(ttl.Seconds()),
	})
}

// Login serves POST /api/auth/login. The token is pinned to the company of the request.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	ctx := r.Context()
	u, err := h.users.Authenticate(ctx, middleware.TenantFrom(ctx), in.Email, in.Password)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	h.respondToken(w, u.ID, u.Role, middleware.CompanyFrom(ctx), LoginTTL)
}

// DevToken serves POST /dev/token. It is only routed when dev tokens are enabled.
func (h *Handler) DevToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in struct {
		Sub       string `json:"sub"`
		Role      string `json:"role"`
		CompanyID string `json:"company_id"`
	}
	if err := utils.DecodeOptionalJSON(r, &in); err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	if in.Sub = strings.TrimSpace(in.Sub); in.Sub == "" {
		in.Sub = "dev-user"
	}
	if in.Role = utils.LowerCode(in.Role); in.Role == "" {
		in.Role = globals.RoleGuest
	}
	h.respondToken(w, in.Sub, in.Role, strings.TrimSpace(in.CompanyID), DevTokenTTL)
}
