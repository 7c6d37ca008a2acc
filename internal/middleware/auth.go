package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AlexFame/bazaar-sub001/internal/apierr"
	"github.com/AlexFame/bazaar-sub001/internal/auth"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/reqctx"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	accountKey = "account"

	initDataScheme = "tma "
	initDataHeader = "X-Init-Data"
)

func reject(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apierr.New(code, message))
}

// AuthMiddleware verifies the host-signed init payload once per request and
// stores the resolved account in the echo context.
type AuthMiddleware struct {
	verifier *auth.Verifier
	resolver service.IdentityResolver
	log      *zap.Logger
}

func NewAuthMiddleware(verifier *auth.Verifier, resolver service.IdentityResolver, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, resolver: resolver, log: log}
}

func initData(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); len(authz) > len(initDataScheme) && strings.EqualFold(authz[:len(initDataScheme)], initDataScheme) {
		return strings.TrimSpace(authz[len(initDataScheme):])
	}
	return strings.TrimSpace(r.Header.Get(initDataHeader))
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, err := m.verifier.Verify(initData(c.Request()))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrServerMisconfigured):
				m.log.Error("auth secret is not configured")
				return reject(c, http.StatusInternalServerError, "server_misconfigured", "authentication is not configured")
			case errors.Is(err, auth.ErrMalformedPayload):
				return reject(c, http.StatusUnauthorized, "malformed_payload", "malformed init data")
			case errors.Is(err, auth.ErrPayloadExpired):
				return reject(c, http.StatusUnauthorized, "payload_expired", "init data expired, please re-open the app")
			default:
				return reject(c, http.StatusUnauthorized, "invalid_signature", "invalid init data signature")
			}
		}

		acc, err := m.resolver.Resolve(c.Request().Context(), ident)
		if err != nil {
			if errors.Is(err, service.ErrAccountBanned) {
				msg := "account suspended"
				if acc != nil && acc.BanReason != "" {
					msg += ": " + acc.BanReason
				}
				return reject(c, http.StatusForbidden, "account_banned", msg)
			}
			m.log.Error("resolve identity", zap.Int64("external_id", ident.ID), zap.Error(err))
			return reject(c, http.StatusInternalServerError, "internal_error", "failed to resolve account")
		}
		c.Set(accountKey, acc)
		ctx := reqctx.WithAccountID(c.Request().Context(), acc.ID)
		if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
			ctx = reqctx.WithRID(ctx, rid)
		}
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// Account returns the account stored by RequireAuth, or nil.
func Account(c echo.Context) *model.Account {
	acc, _ := c.Get(accountKey).(*model.Account)
	return acc
}
