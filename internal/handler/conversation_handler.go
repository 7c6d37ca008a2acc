package handler

import (
	"net/http"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	base
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService, log *zap.Logger) *ConversationHandler {
	return &ConversationHandler{base: base{log: log}, svc: svc}
}

type ConversationResponse struct {
	ConversationID  uint64           `json:"conversationId"`
	ListingID       uint64           `json:"listingId"`
	BuyerAccountID  uint64           `json:"buyerAccountId"`
	SellerAccountID uint64           `json:"sellerAccountId"`
	LastActivityAt  string           `json:"lastActivityAt"`
	LastMessage     *MessageResponse `json:"lastMessage,omitempty"`
	UnreadCount     int64            `json:"unreadCount"`
}

type MessageResponse struct {
	ID              uint64 `json:"id"`
	SenderAccountID uint64 `json:"senderAccountId"`
	Content         string `json:"content"`
	Read            bool   `json:"read"`
	CreatedAt       string `json:"createdAt"`
}

type ConversationDetailResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}

type MessageRequest struct {
	Content string `json:"content"`
}

func toConversationResponse(cv *model.Conversation) ConversationResponse {
	return ConversationResponse{
		ConversationID:  cv.ID,
		ListingID:       cv.ListingID,
		BuyerAccountID:  cv.BuyerAccountID,
		SellerAccountID: cv.SellerAccountID,
		LastActivityAt:  cv.LastActivityAt.Format(time.RFC3339),
	}
}

func toMessageResponse(m *model.Message) MessageResponse {
	return MessageResponse{
		ID:              m.ID,
		SenderAccountID: m.SenderAccountID,
		Content:         m.Content,
		Read:            m.Read,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ConversationHandler) CreateFromListing(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	listingID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "listing")
	}
	cv, err := h.svc.StartFromListing(c.Request().Context(), acc, listingID)
	if err != nil {
		return h.serviceError(c, err, "failed to start conversation")
	}
	return c.JSON(http.StatusOK, toConversationResponse(cv))
}

func (h *ConversationHandler) List(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	summaries, err := h.svc.ListForAccount(c.Request().Context(), acc.ID)
	if err != nil {
		return h.serviceError(c, err, "failed to fetch conversations")
	}
	resp := make([]ConversationResponse, 0, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		r := toConversationResponse(&s.Conversation)
		r.UnreadCount = s.UnreadCount
		if s.LastMessage != nil {
			m := toMessageResponse(s.LastMessage)
			r.LastMessage = &m
		}
		resp = append(resp, r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) Detail(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "conversation")
	}
	cv, msgs, err := h.svc.FetchDetail(c.Request().Context(), acc, convID)
	if err != nil {
		return h.serviceError(c, err, "failed to fetch conversation")
	}
	resp := ConversationDetailResponse{
		ConversationResponse: toConversationResponse(cv),
		Messages:             make([]MessageResponse, 0, len(msgs)),
	}
	for i := range msgs {
		resp.Messages = append(resp.Messages, toMessageResponse(&msgs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) Send(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "conversation")
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	msg, err := h.svc.Send(c.Request().Context(), acc, convID, req.Content)
	if err != nil {
		return h.serviceError(c, err, "failed to send message")
	}
	return c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (h *ConversationHandler) Delete(c echo.Context) error {
	acc, ok := currentAccount(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := idParam(c, "id")
	if !ok {
		return badID(c, "conversation")
	}
	if err := h.svc.Delete(c.Request().Context(), acc, convID); err != nil {
		return h.serviceError(c, err, "failed to delete conversation")
	}
	return c.NoContent(http.StatusNoContent)
}
