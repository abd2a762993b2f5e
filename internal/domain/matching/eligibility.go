package matching

import "time"

// IsEligible applies the donation cooldown: a donor who never donated is
// always eligible, otherwise at least cooldownDays whole days must have
// passed since the last donation.
func IsEligible(lastDonation *time.Time, cooldownDays int, now time.Time) bool {
	if lastDonation == nil {
		return true
	}
	return daysBetween(now, *lastDonation) >= cooldownDays
}

// NextEligibleDate returns the first day the donor may donate again, or nil
// when there is no donation on record.
func NextEligibleDate(lastDonation *time.Time, cooldownDays int) *time.Time {
	if lastDonation == nil {
		return nil
	}
	next := lastDonation.AddDate(0, 0, cooldownDays)
	return &next
}

func daysBetween(now, then time.Time) int {
	return int(now.Sub(then).Hours() / 24)
}
