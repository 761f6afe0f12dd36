package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"cruiseops/globals"
	"cruiseops/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

type Principal struct {
	UserID    string
	Role      string
	CompanyID string
}

type Auth struct {
	secret []byte
	now    func() time.Time
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret), now: time.Now}
}

// IssueToken signs an HS256 token for sub with the given role.
func (a *Auth) IssueToken(sub, role, companyID string, ttl time.Duration) (string, error) {
	if !slices.Contains(globals.AnyRole, role) {
		return "", utils.Invalid("role must be one of %s", strings.Join(globals.AnyRole, "|"))
	}
	now := a.now().UTC()
	claims := Claims{
		Role:      role,
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Auth) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}
	return claims, nil
}

// bearer extracts the token from the Authorization header, or from the access_token
// query parameter on websocket upgrades where browsers cannot set headers.
func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:]), true
	}
	if websocket.IsWebSocketUpgrade(r) {
		if t := r.URL.Query().Get("access_token"); t != "" {
			return t, true
		}
	}
	return "", false
}

func withPrincipal(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, globals.UserIDKey, c.Subject)
	ctx = context.WithValue(ctx, globals.RoleKey, c.Role)
	if c.CompanyID != "" {
		ctx = context.WithValue(ctx, globals.CompanyKey, c.CompanyID)
	}
	return ctx
}

func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, ok := bearer(r)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		claims, err := a.ParseToken(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r.WithContext(withPrincipal(r.Context(), claims)), ps)
	}
}

// Require authenticates and then checks the role claim against roles.
func (a *Auth) Require(roles []string, next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !slices.Contains(roles, PrincipalFrom(r.Context()).Role) {
			utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r, ps)
	})
}

func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if raw, ok := bearer(r); ok {
			claims, err := a.ParseToken(raw)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			r = r.WithContext(withPrincipal(r.Context(), claims))
		}
		next(w, r, ps)
	}
}

func PrincipalFrom(ctx context.Context) Principal {
	var p Principal
	p.UserID, _ = ctx.Value(globals.UserIDKey).(string)
	p.Role, _ = ctx.Value(globals.RoleKey).(string)
	p.CompanyID, _ = ctx.Value(globals.CompanyKey).(string)
	return p
}
