package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AlexFame/bazaar-sub001/internal/authz"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxMessageRunes = 4000

type ConversationSummary struct {
	Conversation model.Conversation
	LastMessage  *model.Message
	UnreadCount  int64
}

type ConversationService interface {
	GetOrCreate(ctx context.Context, listingID, buyerID, sellerID uint64) (*model.Conversation, error)
	StartFromListing(ctx context.Context, actor *model.Account, listingID uint64) (*model.Conversation, error)
	Send(ctx context.Context, actor *model.Account, convID uint64, content string) (*model.Message, error)
	// FetchDetail marks the counterpart's messages read as a side effect of viewing.
	FetchDetail(ctx context.Context, actor *model.Account, convID uint64) (*model.Conversation, []model.Message, error)
	ListForAccount(ctx context.Context, accountID uint64) ([]ConversationSummary, error)
	Delete(ctx context.Context, actor *model.Account, convID uint64) error
}

type conversationService struct {
	convRepo    repository.ConversationRepository
	listingRepo repository.ListingRepository
	notifier    Notifier
	log         *zap.Logger
}

func NewConversationService(convRepo repository.ConversationRepository, listingRepo repository.ListingRepository, notifier Notifier, log *zap.Logger) ConversationService {
	return &conversationService{convRepo: convRepo, listingRepo: listingRepo, notifier: notifier, log: log}
}

func (s *conversationService) GetOrCreate(ctx context.Context, listingID, buyerID, sellerID uint64) (*model.Conversation, error) {
	if listingID == 0 || buyerID == 0 || sellerID == 0 {
		return nil, ErrBadRequest
	}
	if buyerID == sellerID {
		return nil, ErrSelfConversation
	}
	cv, err := s.convRepo.FindByTriple(ctx, listingID, buyerID, sellerID)
	if err == nil {
		return cv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cv = &model.Conversation{ListingID: listingID, BuyerAccountID: buyerID, SellerAccountID: sellerID}
	if err := s.convRepo.Create(ctx, cv); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// A concurrent request created it first.
		return s.convRepo.FindByTriple(ctx, listingID, buyerID, sellerID)
	}
	return cv, nil
}

func (s *conversationService) StartFromListing(ctx context.Context, actor *model.Account, listingID uint64) (*model.Conversation, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := authorize(ctx, s.log, actorOf(actor), authz.StartConversation, authz.ForListing(listing.OwnerAccountID)); err != nil {
		return nil, err
	}
	return s.GetOrCreate(ctx, listing.ID, actor.ID, listing.OwnerAccountID)
}

func (s *conversationService) find(ctx context.Context, convID uint64) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cv, nil
}

func (s *conversationService) Send(ctx context.Context, actor *model.Account, convID uint64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrBadRequest)
	}
	if utf8.RuneCountInString(content) > maxMessageRunes {
		return nil, fmt.Errorf("%w: content is too long", ErrBadRequest)
	}
	cv, err := s.find(ctx, convID)
	if err != nil {
		return nil, err
	}
	act := actorOf(actor)
	if err := authorize(ctx, s.log, act, authz.SendMessage, authz.ForConversation(cv.BuyerAccountID, cv.SellerAccountID)); err != nil {
		return nil, err
	}
	msg := &model.Message{
		ConversationID:  cv.ID,
		SenderAccountID: act.ID,
		Content:         content,
	}
	if err := s.convRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, cv.Counterpart(act.ID), messagePreview(actor, content), model.NotifyMessages)
	return msg, nil
}

func (s *conversationService) FetchDetail(ctx context.Context, actor *model.Account, convID uint64) (*model.Conversation, []model.Message, error) {
	cv, err := s.find(ctx, convID)
	if err != nil {
		return nil, nil, err
	}
	act := actorOf(actor)
	if err := authorize(ctx, s.log, act, authz.ViewConversation, authz.ForConversation(cv.BuyerAccountID, cv.SellerAccountID)); err != nil {
		return nil, nil, err
	}
	if _, err := s.convRepo.MarkRead(ctx, cv.ID, act.ID); err != nil {
		return nil, nil, err
	}
	msgs, err := s.convRepo.ListMessages(ctx, cv.ID)
	if err != nil {
		return nil, nil, err
	}
	return cv, msgs, nil
}

func (s *conversationService) ListForAccount(ctx context.Context, accountID uint64) ([]ConversationSummary, error) {
	convs, err := s.convRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(convs))
	for _, cv := range convs {
		ids = append(ids, cv.ID)
	}
	last, err := s.convRepo.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.convRepo.UnreadCounts(ctx, ids, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationSummary, 0, len(convs))
	for _, cv := range convs {
		sum := ConversationSummary{Conversation: cv, UnreadCount: unread[cv.ID]}
		if m, ok := last[cv.ID]; ok {
			sum.LastMessage = &m
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *conversationService) Delete(ctx context.Context, actor *model.Account, convID uint64) error {
	cv, err := s.find(ctx, convID)
	if err != nil {
		return err
	}
	act := actorOf(actor)
	if err := authorize(ctx, s.log, act, authz.DeleteConversation, authz.ForConversation(cv.BuyerAccountID, cv.SellerAccountID)); err != nil {
		return err
	}
	return s.convRepo.HideFor(ctx, cv, act.ID)
}

func messagePreview(sender *model.Account, content string) string {
	const previewRunes = 200
	if utf8.RuneCountInString(content) > previewRunes {
		content = string([]rune(content)[:previewRunes]) + "…"
	}
	name := "New message"
	if sender != nil && sender.DisplayName != "" {
		name = sender.DisplayName
	}
	return name + ": " + content
}
