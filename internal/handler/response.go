package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AlexFame/bazaar-sub001/internal/apierr"
	"github.com/AlexFame/bazaar-sub001/internal/middleware"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse = apierr.Response

func NewErrorResponse(code, message string) ErrorResponse {
	return apierr.New(code, message)
}

type base struct {
	log *zap.Logger
}

// serviceError maps a service failure onto the wire. Unknown errors become 500
// with a caller-supplied message so storage details never leak.
func (b base) serviceError(c echo.Context, err error, internalMsg string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "resource not found"))
	case errors.Is(err, service.ErrAccountBanned):
		msg := "account suspended"
		if acc := middleware.Account(c); acc != nil && acc.BanReason != "" {
			msg += ": " + acc.BanReason
		}
		return c.JSON(http.StatusForbidden, NewErrorResponse("account_banned", msg))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrSelfConversation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("self_conversation", "cannot start a conversation with yourself"))
	case errors.Is(err, service.ErrSelfOffer):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("self_offer", "cannot make an offer on your own listing"))
	case errors.Is(err, service.ErrDuplicatePendingOffer):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("duplicate_pending_offer", "you already have a pending offer on this listing"))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_transition", "offer is no longer pending"))
	case errors.Is(err, service.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	b.log.Error(internalMsg, zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", internalMsg))
}

func currentAccount(c echo.Context) (*model.Account, bool) {
	acc := middleware.Account(c)
	return acc, acc != nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing account"))
}

func idParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badID(c echo.Context, what string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid "+what+" id"))
}
