package postgres

import "github.com/gdugdh24/bookswap-backend/internal/domain"

// poolBuilder groups (user, item) rows into matchable users, keeping the
// order in which users and their items first appear.
type poolBuilder struct {
	order []string
	items map[string][]string
	seen  map[string]map[string]struct{}
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{
		items: make(map[string][]string),
		seen:  make(map[string]map[string]struct{}),
	}
}

func (b *poolBuilder) add(userID, itemID string) {
	seen, ok := b.seen[userID]
	if !ok {
		seen = make(map[string]struct{})
		b.seen[userID] = seen
		b.order = append(b.order, userID)
	}
	if _, dup := seen[itemID]; dup {
		return
	}
	seen[itemID] = struct{}{}
	b.items[userID] = append(b.items[userID], itemID)
}

func (b *poolBuilder) users() []domain.MatchableUser {
	out := make([]domain.MatchableUser, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, domain.MatchableUser{ID: id, Items: b.items[id]})
	}
	return out
}
