package queue

import "winqroo/models"

// PrioritySurchargeRate is the markup for fast-track admission: a 150%
// surcharge, so the total charge is 2.5x the base price. Fast-tracking is a
// privileged, paid action, not a free head-of-line cut.
const PrioritySurchargeRate = 1.5

// QuotePrice computes the total charge for a booking with the given combined
// base price. VIP and emergency bookings pay the fast-track surcharge; the
// regular tier is fast-tracked behind them without a markup.
func QuotePrice(basePrice float64, customerType models.CustomerType, isEmergency bool) float64 {
	if isEmergency || customerType == models.CustomerVIP {
		return basePrice * (1 + PrioritySurchargeRate)
	}
	return basePrice
}
