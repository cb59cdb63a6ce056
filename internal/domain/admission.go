package domain

import "time"

// StatusVotingOpen is the only showdown status that admits votes. Every other
// status is a display value owned by the upstream state machine.
const StatusVotingOpen = "VOTING_OPEN"

type Admission string

const (
	Admitted              Admission = "ADMITTED"
	RejectedStatus        Admission = "STATUS_NOT_OPEN"
	RejectedNotYetOpen    Admission = "NOT_YET_OPEN"
	RejectedWindowElapsed Admission = "WINDOW_ELAPSED"
	RejectedInvalidWindow Admission = "INVALID_WINDOW"
)

// CheckAdmission evaluates the status gate and the vote window. A missing bound
// is unbounded on that side; an inverted window never opens.
func CheckAdmission(status string, now time.Time, openTime, closeTime *time.Time) Admission {
	if status != StatusVotingOpen {
		return RejectedStatus
	}
	if openTime != nil && closeTime != nil && openTime.After(*closeTime) {
		return RejectedInvalidWindow
	}
	if openTime != nil && now.Before(*openTime) {
		return RejectedNotYetOpen
	}
	if closeTime != nil && now.After(*closeTime) {
		return RejectedWindowElapsed
	}
	return Admitted
}

func IsVotingAdmissible(status string, now time.Time, openTime, closeTime *time.Time) bool {
	return CheckAdmission(status, now, openTime, closeTime) == Admitted
}

// Admission runs the gate against the stored row.
func (s *Showdown) Admission(now time.Time) Admission {
	status := ""
	if s.Status != nil {
		status = *s.Status
	}
	return CheckAdmission(status, now, s.VoteOpenTime, s.VoteCloseTime)
}
