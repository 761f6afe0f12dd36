package middleware

import (
	"context"
	"net/http"
	"strings"

	"cruiseops/globals"
	"cruiseops/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// TenantResolver maps a company id to the name of its tenant database.
type TenantResolver interface {
	TenantDB(ctx context.Context, companyID string) (string, error)
}

// requestCompany reads X-Company-Id, or company_id on websocket upgrades.
func requestCompany(r *http.Request) string {
	if c := strings.TrimSpace(r.Header.Get(globals.CompanyHeader)); c != "" {
		return c
	}
	if websocket.IsWebSocketUpgrade(r) {
		return strings.TrimSpace(r.URL.Query().Get("company_id"))
	}
	return ""
}

// Tenant requires X-Company-Id and stores the company and its tenant database in the
// request context.
func Tenant(res TenantResolver, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		companyID := requestCompany(r)
		if companyID == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Missing X-Company-Id header")
			return
		}
		ctx, err := bindTenant(r.Context(), res, companyID)
		if err != nil {
			utils.RespondWithErr(w, err)
			return
		}
		next(w, r.WithContext(ctx), ps)
	}
}

// OptionalTenant binds the tenant when the header is present.
func OptionalTenant(res TenantResolver, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if companyID := requestCompany(r); companyID != "" {
			ctx, err := bindTenant(r.Context(), res, companyID)
			if err != nil {
				utils.RespondWithErr(w, err)
				return
			}
			r = r.WithContext(ctx)
		}
		next(w, r, ps)
	}
}

func bindTenant(ctx context.Context, res TenantResolver, companyID string) (context.Context, error) {
	// Unknown companies are rejected before the pin check so they stay 400.
	tenant, err := res.TenantDB(ctx, companyID)
	if err != nil {
		return ctx, err
	}
	// Tokens issued by login are pinned to one company; only admins may switch.
	if p := PrincipalFrom(ctx); p.CompanyID != "" && p.CompanyID != companyID && p.Role != globals.RoleAdmin {
		return ctx, utils.Forbidden("Forbidden")
	}
	ctx = context.WithValue(ctx, globals.TenantKey, tenant)
	return context.WithValue(ctx, globals.CompanyKey, companyID), nil
}

// WithTenant is used by background workers and tests that act on a tenant directly.
func WithTenant(ctx context.Context, companyID, tenant string) context.Context {
	ctx = context.WithValue(ctx, globals.TenantKey, tenant)
	return context.WithValue(ctx, globals.CompanyKey, companyID)
}

func TenantFrom(ctx context.Context) string {
	t, _ := ctx.Value(globals.TenantKey).(string)
	return t
}

// CompanyFrom returns the company bound by Tenant; it wins over the token claim.
func CompanyFrom(ctx context.Context) string {
	c, _ := ctx.Value(globals.CompanyKey).(string)
	return c
}
