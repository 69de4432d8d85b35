package rules

import "time"

// BirthdateBounds converts an inclusive age range into inclusive
// birthdate bounds using calendar-year arithmetic against now, matching
// the platform's historical boundary behavior:
//
//	maxAge -> earliest birthdate = Date(year-maxAge-1, month, day)
//	minAge -> latest birthdate   = Date(year-minAge, month, day)
//
// A zero bound means the side is unconstrained. Ages are compared by
// year/month/day, not elapsed days, so someone turning minAge today is
// already included and someone one day short of the maxAge boundary is
// not.
func BirthdateBounds(minAge, maxAge int, now time.Time) (earliest, latest time.Time) {
	now = now.UTC()
	if maxAge > 0 {
		earliest = time.Date(now.Year()-maxAge-1, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if minAge > 0 {
		latest = time.Date(now.Year()-minAge, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return earliest, latest
}

// AgeAt computes a calendar age: years since birth, minus one if the
// birthday has not yet occurred this year.
func AgeAt(birthdate, now time.Time) int {
	birthdate = birthdate.UTC()
	now = now.UTC()

	age := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}
