package domain

import "time"

// MatchableUser is a sender's surplus items or a receiver's wanted items for
// one generation run. Items is an ordered set.
type MatchableUser struct {
	ID    string   `json:"id"`
	Items []string `json:"items"`
}

type CandidateKind string

const (
	CandidateUser  CandidateKind = "user"
	CandidateStand CandidateKind = "stand"
)

// UserCandidate pairs a sender with a receiver for a set of items.
type UserCandidate struct {
	SenderID   string   `json:"senderId"`
	ReceiverID string   `json:"receiverId"`
	Items      []string `json:"items"`
}

// StandCandidate routes a user's items through the stand.
type StandCandidate struct {
	UserID       string   `json:"userId"`
	HandoffItems []string `json:"handoffItems"`
	PickupItems  []string `json:"pickupItems"`
}

// Candidate is an unpersisted proposed match. Exactly one of User or Stand is
// set, selected by Kind.
type Candidate struct {
	Kind  CandidateKind   `json:"kind"`
	User  *UserCandidate  `json:"user,omitempty"`
	Stand *StandCandidate `json:"stand,omitempty"`
}

func NewUserCandidate(senderID, receiverID string, items []string) Candidate {
	return Candidate{
		Kind: CandidateUser,
		User: &UserCandidate{SenderID: senderID, ReceiverID: receiverID, Items: items},
	}
}

func NewStandCandidate(userID string, handoffItems, pickupItems []string) Candidate {
	if handoffItems == nil {
		handoffItems = []string{}
	}
	if pickupItems == nil {
		pickupItems = []string{}
	}
	return Candidate{
		Kind:  CandidateStand,
		Stand: &StandCandidate{UserID: userID, HandoffItems: handoffItems, PickupItems: pickupItems},
	}
}

// Users returns the ids of everyone taking part in the candidate.
func (c Candidate) Users() []string {
	switch c.Kind {
	case CandidateUser:
		return []string{c.User.SenderID, c.User.ReceiverID}
	case CandidateStand:
		return []string{c.Stand.UserID}
	}
	return nil
}

// MeetingLocation is a place where user matches meet. A nil or non-positive
// SimultaneousMatchLimit means unlimited.
type MeetingLocation struct {
	Name                   string `json:"name" validate:"required"`
	SimultaneousMatchLimit *int   `json:"simultaneousMatchLimit,omitempty" validate:"omitempty,min=1"`
}

// MeetingInfo is where and when a match meets. Stand matches have no Date.
type MeetingInfo struct {
	Location string     `json:"location"`
	Date     *time.Time `json:"date"`
}

type CandidateWithMeeting struct {
	Candidate
	MeetingInfo MeetingInfo `json:"meetingInfo"`
}
