package queue

import "winqroo/models"

// Priority scores for the paid fast-track policy. VIP members and emergency
// bookings outrank regulars, regulars outrank walk-in standards. Equal scores
// keep FIFO order among themselves.
const (
	scoreStandard  = 0
	scoreRegular   = 1
	scoreFastTrack = 2
)

// PriorityScore returns the fast-track rank of an admission request. The
// emergency flag and the VIP tier rank the same; they do not stack.
func PriorityScore(customerType models.CustomerType, isEmergency bool) int {
	if isEmergency || customerType == models.CustomerVIP {
		return scoreFastTrack
	}
	if customerType == models.CustomerRegular {
		return scoreRegular
	}
	return scoreStandard
}

// InsertionPosition computes where a new entry with the given priority score
// lands among the current active entries: directly behind the last entry whose
// own score is at least as high. With no priority involved this degrades to
// pure FIFO append at activeCount+1.
func InsertionPosition(active []models.QueueEntry, score int) int {
	position := 1
	for _, e := range active {
		if e.PriorityScore >= score {
			position++
		}
	}
	return position
}

// allowedTransitions maps each status to the statuses reachable from it.
// Terminal states have no outgoing transitions.
var allowedTransitions = map[models.QueueStatus][]models.QueueStatus{
	models.QueueStatusWaiting:    {models.QueueStatusInProgress, models.QueueStatusCancelled, models.QueueStatusNoShow},
	models.QueueStatusInProgress: {models.QueueStatusCompleted, models.QueueStatusCancelled},
}

// ValidTransition reports whether a status change is permitted.
func ValidTransition(from, to models.QueueStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
