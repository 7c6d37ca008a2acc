package handler

import (
	"net/http"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ListingHandler struct {
	base
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{base: base{log: log}, svc: svc}
}

type ListingRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (r ListingRequest) input() service.ListingInput {
	return service.ListingInput{Title: r.Title, Description: r.Description, Price: r.Price}
}

type ListingResponse struct {
	ID             uint64          `json:"id"`
	OwnerAccountID uint64          `json:"ownerAccountId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

func toListingResponse(l *model.Listing) ListingResponse {
	return ListingResponse{
		ID:             l.ID,
		OwnerAccountID: l.OwnerAccountID,
		Title:          l.Title,
		Description:    l.Description,
		Price:          l.Price,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      l.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ListingHandler) Create(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	l, err := h.svc.Create(c.Request().Context(), acc, req.input())
	if err != nil {
		return h.serviceError(c, err, "failed to create listing")
	}
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badID(c, "listing")
	}
	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.serviceError(c, err, "failed to fetch listing")
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

func (h *ListingHandler) Update(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badID(c, "listing")
	}
	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	l, err := h.svc.Update(c.Request().Context(), acc, id, req.input())
	if err != nil {
		return h.serviceError(c, err, "failed to update listing")
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

func (h *ListingHandler) Delete(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badID(c, "listing")
	}
	if err := h.svc.Delete(c.Request().Context(), acc, id); err != nil {
		return h.serviceError(c, err, "failed to delete listing")
	}
	return c.NoContent(http.StatusNoContent)
}
