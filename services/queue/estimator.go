package queue

import "winqroo/models"

// EstimateWait returns the estimated wait in minutes for the given position:
// the sum of the combined service durations of every active entry strictly
// ahead of it. Each customer ahead is assumed to consume their full booked
// duration, a conservative estimate with no smoothing. Zero entries ahead
// means zero wait.
func EstimateWait(active []models.QueueEntry, position int) int {
	total := 0
	for _, e := range active {
		if e.Position < position {
			total += e.ServiceDuration
		}
	}
	return total
}

// RecomputeEstimates returns the estimated wait for every entry in the list,
// keyed by entry ID. The scope is small (tens of entries), so recomputing all
// of them is cheaper than reasoning about which subset changed.
func RecomputeEstimates(active []models.QueueEntry) map[string]int {
	estimates := make(map[string]int, len(active))
	for _, e := range active {
		estimates[e.ID] = EstimateWait(active, e.Position)
	}
	return estimates
}
