package presence

import (
	"fmt"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

// PeerLookup answers which contact edges touch a user. Contact data is owned
// by the contact store; the notifier only reads it.
type PeerLookup interface {
	ContactsByOwner(owner model.UserID) ([]*model.Contact, error)
	ContactsByContact(contact model.UserID) ([]*model.Contact, error)
}

type Broadcaster interface {
	FanOut(user model.UserID, payload any)
}

// Notifier pushes user_status events to everyone who shares a contact edge
// with a user, in either direction. The relay calls Announce at most once per
// online transition and once per offline transition.
type Notifier struct {
	registry Broadcaster
	contacts PeerLookup
}

func New(registry Broadcaster, contacts PeerLookup) *Notifier {
	return &Notifier{registry: registry, contacts: contacts}
}

func (n *Notifier) Announce(user model.UserID, status string) error {
	peers, err := n.peersOf(user)
	if err != nil {
		return fmt.Errorf("resolving peers: %w", err)
	}

	event := model.NewUserStatusEvent(user, status)
	for peer := range peers {
		n.registry.FanOut(peer, event)
	}
	return nil
}

// peersOf returns the union of both edge directions, minus the user itself.
// A user who added a peer and was added back would otherwise be notified
// twice, hence the set.
func (n *Notifier) peersOf(user model.UserID) (map[model.UserID]struct{}, error) {
	owned, err := n.contacts.ContactsByOwner(user)
	if err != nil {
		return nil, fmt.Errorf("fetching contacts by owner: %w", err)
	}
	reverse, err := n.contacts.ContactsByContact(user)
	if err != nil {
		return nil, fmt.Errorf("fetching contacts by contact: %w", err)
	}

	peers := make(map[model.UserID]struct{}, len(owned)+len(reverse))
	for _, c := range owned {
		peers[c.ContactID] = struct{}{}
	}
	for _, c := range reverse {
		peers[c.OwnerID] = struct{}{}
	}
	delete(peers, user)

	return peers, nil
}
