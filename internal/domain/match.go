package domain

import (
	"time"
)

type MatchKind string

const (
	MatchKindUser  MatchKind = "user-match"
	MatchKindStand MatchKind = "stand-match"
)

type MatchState string

const (
	MatchStateCreated       MatchState = "created"
	MatchStatePartlyMatched MatchState = "partly-matched"
	MatchStateFullyMatched  MatchState = "fully-matched"
)

// EventItemDelivered is logged when the sender side of a match hands over an item.
const EventItemDelivered = "item-delivered"

func (s MatchState) rank() int {
	switch s {
	case MatchStatePartlyMatched:
		return 1
	case MatchStateFullyMatched:
		return 2
	}
	return 0
}

// MatchItem is one item a match is expected to move. Handoff is set on stand
// match items the user brings to the stand; the rest are picked up there.
type MatchItem struct {
	ItemID       string  `json:"itemId"`
	ReceiverID   *string `json:"receiverId,omitempty"`
	ReceivedBlid *string `json:"receivedBlid,omitempty"`
	Handoff      bool    `json:"handoff,omitempty"`
}

// MatchDelivery records an item the sender side handed over.
type MatchDelivery struct {
	ItemID      string    `json:"itemId"`
	Blid        string    `json:"blid"`
	InventoryID string    `json:"inventoryId"`
	At          time.Time `json:"at"`
}

type MatchEvent struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
}

// ReceivedItem is a scanned item being assigned to a receiver.
type ReceivedItem struct {
	ItemID string
	Blid   string
}

type Match struct {
	ID           string          `json:"id"`
	Kind         MatchKind       `json:"kind"`
	SenderID     *string         `json:"senderId,omitempty"`
	ReceiverID   *string         `json:"receiverId,omitempty"`
	CustomerID   *string         `json:"customerId,omitempty"`
	Participants []string        `json:"participants"`
	Items        []MatchItem     `json:"items"`
	Deliveries   []MatchDelivery `json:"deliveries"`
	State        MatchState      `json:"state"`
	Events       []MatchEvent    `json:"events"`
	MeetingInfo  MeetingInfo     `json:"meetingInfo"`
	Version      int             `json:"version"`
	Archived     bool            `json:"archived"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewMatchFromCandidate converts a scheduled candidate to a match in the
// created state.
func NewMatchFromCandidate(id string, c CandidateWithMeeting, now time.Time) *Match {
	m := &Match{
		ID:           id,
		Participants: []string{},
		Deliveries:   []MatchDelivery{},
		State:        MatchStateCreated,
		Events:       []MatchEvent{{Type: string(MatchStateCreated), Time: now}},
		MeetingInfo:  c.MeetingInfo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch c.Kind {
	case CandidateUser:
		sender, receiver := c.User.SenderID, c.User.ReceiverID
		m.Kind = MatchKindUser
		m.SenderID = &sender
		m.ReceiverID = &receiver
		m.Items = make([]MatchItem, 0, len(c.User.Items))
		for _, item := range c.User.Items {
			m.Items = append(m.Items, MatchItem{ItemID: item})
		}
	case CandidateStand:
		customer := c.Stand.UserID
		m.Kind = MatchKindStand
		m.CustomerID = &customer
		m.Items = make([]MatchItem, 0, len(c.Stand.HandoffItems)+len(c.Stand.PickupItems))
		for _, item := range c.Stand.HandoffItems {
			m.Items = append(m.Items, MatchItem{ItemID: item, Handoff: true})
		}
		for _, item := range c.Stand.PickupItems {
			m.Items = append(m.Items, MatchItem{ItemID: item})
		}
	}

	return m
}

func (m *Match) HasUser(userID string) bool {
	for _, id := range []*string{m.SenderID, m.ReceiverID, m.CustomerID} {
		if id != nil && *id == userID {
			return true
		}
	}
	return false
}

// GetOtherUserID returns the counterpart of userID in a user match.
func (m *Match) GetOtherUserID(userID string) (string, bool) {
	if m.Kind != MatchKindUser || m.SenderID == nil || m.ReceiverID == nil {
		return "", false
	}
	if *m.SenderID == userID {
		return *m.ReceiverID, true
	}
	if *m.ReceiverID == userID {
		return *m.SenderID, true
	}
	return "", false
}

// ExpectsItem reports whether itemID has an entry still waiting for a receiver.
func (m *Match) ExpectsItem(itemID string) bool {
	for _, item := range m.Items {
		if item.ItemID == itemID && item.ReceiverID == nil {
			return true
		}
	}
	return false
}

// HasReceivedBlid reports whether the physical copy was already recorded.
func (m *Match) HasReceivedBlid(blid string) bool {
	for _, item := range m.Items {
		if item.ReceivedBlid != nil && *item.ReceivedBlid == blid {
			return true
		}
	}
	return false
}

// AwaitsDelivery reports whether itemID is in the match and the sender side
// has not handed a copy of it over yet.
func (m *Match) AwaitsDelivery(itemID string) bool {
	found := false
	for _, item := range m.Items {
		if item.ItemID == itemID {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, d := range m.Deliveries {
		if d.ItemID == itemID {
			return false
		}
	}
	return true
}

// RecordReceived assigns receiverID to every listed item that has no receiver
// yet, recomputes the state and appends one event. The state never regresses.
func (m *Match) RecordReceived(receiverID string, items []ReceivedItem, now time.Time) {
	// Repeated calls for the same receiver add them to Participants only once.
	if !containsString(m.Participants, receiverID) {
		m.Participants = append(m.Participants, receiverID)
	}

	for _, received := range items {
		for i := range m.Items {
			entry := &m.Items[i]
			if entry.ItemID != received.ItemID || entry.ReceiverID != nil {
				continue
			}
			receiver := receiverID
			entry.ReceiverID = &receiver
			if received.Blid != "" {
				blid := received.Blid
				entry.ReceivedBlid = &blid
			}
			break
		}
	}

	next := MatchStateFullyMatched
	for _, entry := range m.Items {
		if entry.ReceiverID == nil {
			next = MatchStatePartlyMatched
			break
		}
	}
	if next.rank() > m.State.rank() {
		m.State = next
	}

	m.Events = append(m.Events, MatchEvent{Type: string(m.State), Time: now})
	m.UpdatedAt = now
}

// RecordDelivered notes that the sender side handed over a copy of itemID.
func (m *Match) RecordDelivered(itemID, blid, inventoryID string, now time.Time) {
	m.Deliveries = append(m.Deliveries, MatchDelivery{
		ItemID:      itemID,
		Blid:        blid,
		InventoryID: inventoryID,
		At:          now,
	})
	m.Events = append(m.Events, MatchEvent{Type: EventItemDelivered, Time: now})
	m.UpdatedAt = now
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
