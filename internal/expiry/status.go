package expiry

import (
	"fmt"
	"time"
)

// Status is the freshness of a unit relative to today and an alert window.
type Status string

const (
	StatusValid        Status = "valid"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

// Alert window bounds, in months.
const (
	DefaultAlertMonths = 3
	MinAlertMonths     = 1
	MaxAlertMonths     = 12
)

// ValidAlertMonths reports whether n is an accepted alert window.
func ValidAlertMonths(n int) bool {
	return n >= MinAlertMonths && n <= MaxAlertMonths
}

// Classify buckets an expiration date. Only strictly past dates are
// expired; a date on or before today plus alertMonths calendar months is
// expiring soon. Time of day in today is ignored.
func Classify(expiration Date, alertMonths int, today time.Time) Status {
	if alertMonths < 0 {
		alertMonths = 0
	}
	now := DateOf(today)
	if expiration.Before(now) {
		return StatusExpired
	}
	if !expiration.After(now.AddMonths(alertMonths)) {
		return StatusExpiringSoon
	}
	return StatusValid
}

// ClassifyISO classifies a stored YYYY-MM-DD date.
func ClassifyISO(iso string, alertMonths int, today time.Time) (Status, error) {
	d, err := ParseISO(iso)
	if err != nil {
		return "", fmt.Errorf("classifying: %w", err)
	}
	return Classify(d, alertMonths, today), nil
}
