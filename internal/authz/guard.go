// Package authz decides whether an account may perform an action on a resource.
// It does no I/O: callers load the ownership fields and pass them in.
package authz

import "errors"

var (
	ErrAccountBanned = errors.New("account_banned")
	ErrNotAuthorized = errors.New("not_authorized")
)

type Action int

const (
	EditListing Action = iota + 1
	DeleteListing
	ViewListingOffers
	StartConversation
	SendMessage
	ViewConversation
	DeleteConversation
	MakeOffer
	TransitionOffer
	BanAccount
)

var actionNames = map[Action]string{
	EditListing:        "edit_listing",
	DeleteListing:      "delete_listing",
	ViewListingOffers:  "view_listing_offers",
	StartConversation:  "start_conversation",
	SendMessage:        "send_message",
	ViewConversation:   "view_conversation",
	DeleteConversation: "delete_conversation",
	MakeOffer:          "make_offer",
	TransitionOffer:    "transition_offer",
	BanAccount:         "ban_account",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// Mutating reports whether the action changes state. Banned accounts may only read.
func (a Action) Mutating() bool {
	switch a {
	case ViewConversation, ViewListingOffers:
		return false
	}
	return true
}

func (a Action) targetsListing() bool {
	return a == EditListing || a == DeleteListing || a == ViewListingOffers
}

func (a Action) conversationScoped() bool {
	return a == SendMessage || a == ViewConversation || a == DeleteConversation
}

// open actions are allowed for any account that is not banned.
func (a Action) open() bool {
	return a == StartConversation || a == MakeOffer
}

type Actor struct {
	ID     uint64
	Admin  bool
	Banned bool
}

// Resource carries the ownership fields relevant to the action. Zero values mean "not applicable".
type Resource struct {
	ListingOwnerID uint64
	BuyerID        uint64
	SellerID       uint64
}

// ForListing describes a listing, or an offer on it, by its owner.
func ForListing(ownerID uint64) Resource {
	return Resource{ListingOwnerID: ownerID}
}

func ForConversation(buyerID, sellerID uint64) Resource {
	return Resource{BuyerID: buyerID, SellerID: sellerID}
}

type Decision struct {
	Allowed bool
	Reason  error
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason error) Decision { return Decision{Reason: reason} }

// Err returns nil when allowed, otherwise the deny reason.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == nil {
		return ErrNotAuthorized
	}
	return d.Reason
}

// Authorize applies the rules in precedence order; the first match wins.
func Authorize(actor Actor, action Action, res Resource) Decision {
	if actor.ID == 0 {
		return deny(ErrNotAuthorized)
	}
	if actor.Banned && action.Mutating() {
		return deny(ErrAccountBanned)
	}
	if action.targetsListing() && res.ListingOwnerID != 0 && res.ListingOwnerID == actor.ID {
		return allow()
	}
	if action.targetsListing() && actor.Admin {
		return allow()
	}
	if action.conversationScoped() && (actor.ID == res.BuyerID || actor.ID == res.SellerID) {
		return allow()
	}
	if action == TransitionOffer && ((res.ListingOwnerID != 0 && res.ListingOwnerID == actor.ID) || actor.Admin) {
		return allow()
	}
	if action == BanAccount && actor.Admin {
		return allow()
	}
	if action.open() {
		return allow()
	}
	return deny(ErrNotAuthorized)
}
