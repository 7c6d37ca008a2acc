package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	const (
		owner    = uint64(1)
		buyer    = uint64(2)
		stranger = uint64(3)
		admin    = uint64(9)
	)
	listing := ForListing(owner)
	conv := ForConversation(buyer, owner)

	tests := []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		want   error
	}{
		{"owner edits listing", Actor{ID: owner}, EditListing, listing, nil},
		{"owner deletes listing", Actor{ID: owner}, DeleteListing, listing, nil},
		{"admin edits listing", Actor{ID: admin, Admin: true}, EditListing, listing, nil},
		{"admin deletes listing", Actor{ID: admin, Admin: true}, DeleteListing, listing, nil},
		{"stranger edits listing", Actor{ID: stranger}, EditListing, listing, ErrNotAuthorized},
		{"banned owner edits listing", Actor{ID: owner, Banned: true}, EditListing, listing, ErrAccountBanned},
		{"banned admin edits listing", Actor{ID: admin, Admin: true, Banned: true}, DeleteListing, listing, ErrAccountBanned},

		{"buyer sends", Actor{ID: buyer}, SendMessage, conv, nil},
		{"seller sends", Actor{ID: owner}, SendMessage, conv, nil},
		{"stranger sends", Actor{ID: stranger}, SendMessage, conv, ErrNotAuthorized},
		{"admin is not a participant", Actor{ID: admin, Admin: true}, SendMessage, conv, ErrNotAuthorized},
		{"banned participant sends", Actor{ID: buyer, Banned: true}, SendMessage, conv, ErrAccountBanned},
		{"banned participant views", Actor{ID: buyer, Banned: true}, ViewConversation, conv, nil},
		{"stranger views", Actor{ID: stranger}, ViewConversation, conv, ErrNotAuthorized},
		{"participant deletes", Actor{ID: buyer}, DeleteConversation, conv, nil},

		{"owner transitions offer", Actor{ID: owner}, TransitionOffer, listing, nil},
		{"admin transitions offer", Actor{ID: admin, Admin: true}, TransitionOffer, listing, nil},
		{"buyer transitions offer", Actor{ID: buyer}, TransitionOffer, listing, ErrNotAuthorized},
		{"banned owner transitions offer", Actor{ID: owner, Banned: true}, TransitionOffer, listing, ErrAccountBanned},

		{"admin bans", Actor{ID: admin, Admin: true}, BanAccount, Resource{}, nil},
		{"user bans", Actor{ID: stranger}, BanAccount, Resource{}, ErrNotAuthorized},

		{"anyone makes offer", Actor{ID: buyer}, MakeOffer, listing, nil},
		{"banned makes offer", Actor{ID: buyer, Banned: true}, MakeOffer, listing, ErrAccountBanned},
		{"anyone starts conversation", Actor{ID: buyer}, StartConversation, listing, nil},

		{"owner views offers", Actor{ID: owner}, ViewListingOffers, listing, nil},
		{"stranger views offers", Actor{ID: stranger}, ViewListingOffers, listing, ErrNotAuthorized},
		{"anonymous", Actor{}, ViewConversation, ForConversation(0, 0), ErrNotAuthorized},
		{"listing without owner", Actor{ID: stranger}, EditListing, Resource{}, ErrNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.actor, tt.action, tt.res)
			if tt.want == nil {
				assert.True(t, d.Allowed)
				assert.NoError(t, d.Err())
				return
			}
			assert.False(t, d.Allowed)
			assert.ErrorIs(t, d.Err(), tt.want)
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "transition_offer", TransitionOffer.String())
	assert.Equal(t, "unknown", Action(0).String())
}
