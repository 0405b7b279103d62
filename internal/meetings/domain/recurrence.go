package domain

import "errors"

var ErrInvalidRecurrence = errors.New("invalid recurrence selection")

// Recurrence describes how a meeting creation request repeats.
type Recurrence string

const (
	RecurrenceNone           Recurrence = ""
	RecurrenceDaily          Recurrence = "daily"
	RecurrenceWeekly         Recurrence = "weekly"
	RecurrenceMonthly        Recurrence = "monthly"
	RecurrenceWeekdayOfMonth Recurrence = "weekday-of-month"
	RecurrenceBiweekly       Recurrence = "biweekly"
	RecurrenceBusiness7      Recurrence = "daily-business-7"
	RecurrenceBusiness15     Recurrence = "daily-business-15"
	RecurrenceBusiness30     Recurrence = "daily-business-30"
)

// IsValid checks if the recurrence is supported.
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly,
		RecurrenceWeekdayOfMonth, RecurrenceBiweekly,
		RecurrenceBusiness7, RecurrenceBusiness15, RecurrenceBusiness30:
		return true
	default:
		return false
	}
}

// BusinessDays returns the reminder-campaign length for the business-day
// selections, and whether this recurrence is a campaign at all.
func (r Recurrence) BusinessDays() (int, bool) {
	switch r {
	case RecurrenceBusiness7:
		return 7, true
	case RecurrenceBusiness15:
		return 15, true
	case RecurrenceBusiness30:
		return 30, true
	default:
		return 0, false
	}
}
