package matching

import (
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
)

// AssignMeetingInfo gives every candidate a location and, for user matches, a
// time slot. Stand candidates meet at standLocation with no date since the
// stand is staffed for the whole session. User candidates are spread
// round-robin over userMatchLocations; the n-th candidate at a location gets
// slot n / limit, starting at startTime + slot*meetingDuration.
//
// The result is a pure function of its arguments, in the input order.
func AssignMeetingInfo(
	candidates []domain.Candidate,
	standLocation string,
	userMatchLocations []domain.MeetingLocation,
	startTime time.Time,
	meetingDuration time.Duration,
) ([]domain.CandidateWithMeeting, error) {
	out := make([]domain.CandidateWithMeeting, 0, len(candidates))
	ordinals := make([]int, len(userMatchLocations))
	next := 0

	for _, c := range candidates {
		switch c.Kind {
		case domain.CandidateStand:
			out = append(out, domain.CandidateWithMeeting{
				Candidate:   c,
				MeetingInfo: domain.MeetingInfo{Location: standLocation},
			})

		case domain.CandidateUser:
			if len(userMatchLocations) == 0 {
				return nil, domain.ErrNoMeetingLocations
			}
			idx := next % len(userMatchLocations)
			next++

			location := userMatchLocations[idx]
			slot := 0
			if limit := location.SimultaneousMatchLimit; limit != nil && *limit > 0 {
				slot = ordinals[idx] / *limit
			}
			ordinals[idx]++

			date := startTime.Add(time.Duration(slot) * meetingDuration)
			out = append(out, domain.CandidateWithMeeting{
				Candidate:   c,
				MeetingInfo: domain.MeetingInfo{Location: location.Name, Date: &date},
			})
		}
	}

	return out, nil
}
