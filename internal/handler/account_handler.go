package handler

import (
	"net/http"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AccountHandler struct {
	base
	svc service.AccountService
}

func NewAccountHandler(svc service.AccountService, log *zap.Logger) *AccountHandler {
	return &AccountHandler{base: base{log: log}, svc: svc}
}

type AccountResponse struct {
	ID          uint64          `json:"id"`
	ExternalID  int64           `json:"externalId"`
	DisplayName string          `json:"displayName"`
	Handle      string          `json:"handle,omitempty"`
	IsAdmin     bool            `json:"isAdmin"`
	Banned      bool            `json:"banned"`
	BanReason   string          `json:"banReason,omitempty"`
	Preferences map[string]bool `json:"notificationPreferences"`
	CreatedAt   string          `json:"createdAt"`
}

type BanRequest struct {
	Reason string `json:"reason"`
}

func toAccountResponse(a *model.Account) AccountResponse {
	prefs := map[string]bool{
		model.NotifyMessages: a.NotificationEnabled(model.NotifyMessages),
		model.NotifyOffers:   a.NotificationEnabled(model.NotifyOffers),
	}
	return AccountResponse{
		ID:          a.ID,
		ExternalID:  a.ExternalID,
		DisplayName: a.DisplayName,
		Handle:      a.Handle,
		IsAdmin:     a.IsAdmin,
		Banned:      a.Banned,
		BanReason:   a.BanReason,
		Preferences: prefs,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AccountHandler) Me(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acc))
}

func (h *AccountHandler) UpdatePreferences(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	var prefs map[string]bool
	if err := c.Bind(&prefs); err != nil || len(prefs) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	updated, err := h.svc.UpdatePreferences(c.Request().Context(), acc, prefs)
	if err != nil {
		return h.serviceError(c, err, "failed to update preferences")
	}
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}

func (h *AccountHandler) Ban(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	targetID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "account")
	}
	var req BanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	target, err := h.svc.Ban(c.Request().Context(), acc, targetID, req.Reason)
	if err != nil {
		return h.serviceError(c, err, "failed to ban account")
	}
	return c.JSON(http.StatusOK, toAccountResponse(target))
}

func (h *AccountHandler) Unban(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	targetID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "account")
	}
	target, err := h.svc.Unban(c.Request().Context(), acc, targetID)
	if err != nil {
		return h.serviceError(c, err, "failed to unban account")
	}
	return c.JSON(http.StatusOK, toAccountResponse(target))
}
