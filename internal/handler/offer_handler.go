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

type OfferHandler struct {
	base
	svc service.OfferService
}

func NewOfferHandler(svc service.OfferService, log *zap.Logger) *OfferHandler {
	return &OfferHandler{base: base{log: log}, svc: svc}
}

type OfferRequest struct {
	Price decimal.Decimal `json:"price"`
}

type OfferResponse struct {
	ID             uint64          `json:"id"`
	ListingID      uint64          `json:"listingId"`
	BuyerAccountID uint64          `json:"buyerAccountId"`
	Price          decimal.Decimal `json:"price"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"createdAt"`
}

type ContactResponse struct {
	AccountID   uint64 `json:"accountId"`
	ExternalID  int64  `json:"externalId"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle,omitempty"`
}

type OfferTransitionResponse struct {
	Offer   OfferResponse    `json:"offer"`
	Contact *ContactResponse `json:"contact,omitempty"`
}

func toOfferResponse(o *model.Offer) OfferResponse {
	return OfferResponse{
		ID:             o.ID,
		ListingID:      o.ListingID,
		BuyerAccountID: o.BuyerAccountID,
		Price:          o.Price,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
}

func toOfferList(list []model.Offer) []OfferResponse {
	resp := make([]OfferResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOfferResponse(&list[i]))
	}
	return resp
}

func (h *OfferHandler) Make(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	listingID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "listing")
	}
	var req OfferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	offer, err := h.svc.Make(c.Request().Context(), acc, listingID, req.Price)
	if err != nil {
		return h.serviceError(c, err, "failed to make offer")
	}
	return c.JSON(http.StatusCreated, toOfferResponse(offer))
}

func (h *OfferHandler) ListForListing(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	listingID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "listing")
	}
	list, err := h.svc.ListForListing(c.Request().Context(), acc, listingID)
	if err != nil {
		return h.serviceError(c, err, "failed to fetch offers")
	}
	return c.JSON(http.StatusOK, toOfferList(list))
}

func (h *OfferHandler) ListMine(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.svc.ListMine(c.Request().Context(), acc)
	if err != nil {
		return h.serviceError(c, err, "failed to fetch offers")
	}
	return c.JSON(http.StatusOK, toOfferList(list))
}

func (h *OfferHandler) Accept(c echo.Context) error {
	return h.transition(c, model.OfferStatusAccepted)
}

func (h *OfferHandler) Reject(c echo.Context) error {
	return h.transition(c, model.OfferStatusRejected)
}

func (h *OfferHandler) transition(c echo.Context, status model.OfferStatus) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	offerID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "offer")
	}
	res, err := h.svc.Transition(c.Request().Context(), acc, offerID, status)
	if err != nil {
		return h.serviceError(c, err, "failed to update offer")
	}
	resp := OfferTransitionResponse{Offer: toOfferResponse(res.Offer)}
	if res.Contact != nil {
		resp.Contact = &ContactResponse{
			AccountID:   res.Contact.AccountID,
			ExternalID:  res.Contact.ExternalID,
			DisplayName: res.Contact.DisplayName,
			Handle:      res.Contact.Handle,
		}
	}
	return c.JSON(http.StatusOK, resp)
}
