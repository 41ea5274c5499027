// Package matching holds the pure parts of match generation: the greedy
// sender/receiver allocation and the meeting scheduler. Nothing here does I/O.
package matching

import (
	"github.com/gdugdh24/bookswap-backend/internal/domain"
)

type pending struct {
	id    string
	items []string
}

// FindCandidates pairs senders with receivers greedily. Each sender scans the
// receivers in order and takes the shared items of every receiver it still
// overlaps with (first fit, not best fit) before the next sender starts.
// Whatever is left afterwards goes through the stand: leftover sender items
// as handoffs, unmet receiver wants as pickups.
//
// User candidates come first in generation order, then stand candidates in
// order of first appearance. The inputs are not modified.
func FindCandidates(senders, receivers []domain.MatchableUser) []domain.Candidate {
	senderRest := newPending(senders)
	receiverRest := newPending(receivers)

	var candidates []domain.Candidate

	for i := range senderRest {
		sender := &senderRest[i]
		for j := range receiverRest {
			if len(sender.items) == 0 {
				break
			}
			receiver := &receiverRest[j]

			shared := intersect(sender.items, receiver.items)
			if len(shared) == 0 {
				continue
			}

			candidates = append(candidates, domain.NewUserCandidate(sender.id, receiver.id, shared))
			sender.items = subtract(sender.items, shared)
			receiver.items = subtract(receiver.items, shared)
		}
	}

	return append(candidates, standCandidates(senderRest, receiverRest)...)
}

func standCandidates(senders, receivers []pending) []domain.Candidate {
	var stands []domain.Candidate
	byUser := make(map[string]int)

	for _, sender := range senders {
		if len(sender.items) == 0 {
			continue
		}
		if idx, ok := byUser[sender.id]; ok {
			stand := stands[idx].Stand
			stand.HandoffItems = union(stand.HandoffItems, sender.items)
			continue
		}
		byUser[sender.id] = len(stands)
		stands = append(stands, domain.NewStandCandidate(sender.id, sender.items, nil))
	}

	for _, receiver := range receivers {
		if len(receiver.items) == 0 {
			continue
		}
		if idx, ok := byUser[receiver.id]; ok {
			stand := stands[idx].Stand
			stand.PickupItems = union(stand.PickupItems, receiver.items)
			continue
		}
		byUser[receiver.id] = len(stands)
		stands = append(stands, domain.NewStandCandidate(receiver.id, nil, receiver.items))
	}

	return stands
}

func newPending(users []domain.MatchableUser) []pending {
	out := make([]pending, 0, len(users))
	for _, u := range users {
		out = append(out, pending{id: u.ID, items: union(nil, u.Items)})
	}
	return out
}

// intersect keeps the order of a.
func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	in := toSet(b)
	var out []string
	for _, v := range a {
		if _, ok := in[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func subtract(a, b []string) []string {
	drop := toSet(b)
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// union appends the members of b missing from a, keeping first occurrence order.
func union(a, b []string) []string {
	seen := toSet(a)
	out := make([]string, len(a), len(a)+len(b))
	copy(out, a)
	for _, v := range b {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, v := range items {
		set[v] = struct{}{}
	}
	return set
}
