package book

import (
	"fmt"
	"time"
)

// NextMonday is the synthetic bucket for weekend birthdays inside the window
// and for birthdays exactly one week away.
const NextMonday = "Next Monday"

// BirthdayWindowDays is the look-ahead of UpcomingBirthdays.
const BirthdayWindowDays = 7

var bucketOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// BirthdayEntry is one contact scheduled into a bucket.
type BirthdayEntry struct {
	Name       string    `json:"name"`
	Annotation string    `json:"annotation,omitempty"`
	Date       time.Time `json:"date"`
	DaysUntil  int       `json:"days_until"`
}

// Label returns the name with its annotation, e.g. "Jane (from Saturday)".
func (e BirthdayEntry) Label() string {
	if e.Annotation == "" {
		return e.Name
	}
	return e.Name + " " + e.Annotation
}

// BirthdayBucket groups entries under a weekday name or NextMonday.
type BirthdayBucket struct {
	Day     string          `json:"day"`
	Entries []BirthdayEntry `json:"entries"`
}

// UpcomingBirthdays schedules every birthday falling within the next week of
// today (date part only):
//
//   - 0 <= days < 7 on a weekday: bucket of that weekday.
//   - 0 <= days < 7 on Saturday/Sunday: NextMonday, annotated "(from <weekday>)".
//   - days == 7: NextMonday, annotated "(will be on <weekday>)", whatever the weekday.
//
// Non-empty buckets are returned Monday..Sunday, then NextMonday. Within a
// bucket, entries keep book order. A 29 February birthday is observed on
// 28 February in non-leap years.
func (b *Book) UpcomingBirthdays(today time.Time) []BirthdayBucket {
	start := dateOnly(today)

	byDay := make(map[time.Weekday][]BirthdayEntry)
	var nextMonday []BirthdayEntry

	for _, r := range b.Records() {
		bd, ok := r.Birthday()
		if !ok {
			continue
		}

		next := observedIn(bd.Month(), bd.Day(), start.Year())
		if next.Before(start) {
			next = observedIn(bd.Month(), bd.Day(), start.Year()+1)
		}
		days := int(next.Sub(start).Hours() / 24)

		entry := BirthdayEntry{
			Name:      r.Name().String(),
			Date:      next,
			DaysUntil: days,
		}
		weekday := next.Weekday()

		switch {
		case days >= 0 && days < BirthdayWindowDays:
			if weekday == time.Saturday || weekday == time.Sunday {
				entry.Annotation = fmt.Sprintf("(from %s)", weekday)
				nextMonday = append(nextMonday, entry)
			} else {
				byDay[weekday] = append(byDay[weekday], entry)
			}
		case days == BirthdayWindowDays:
			entry.Annotation = fmt.Sprintf("(will be on %s)", weekday)
			nextMonday = append(nextMonday, entry)
		}
	}

	var buckets []BirthdayBucket
	for _, day := range bucketOrder {
		if entries := byDay[day]; len(entries) > 0 {
			buckets = append(buckets, BirthdayBucket{Day: day.String(), Entries: entries})
		}
	}
	if len(nextMonday) > 0 {
		buckets = append(buckets, BirthdayBucket{Day: NextMonday, Entries: nextMonday})
	}
	return buckets
}

// FlattenBirthdays concatenates bucket labels in bucket order.
func FlattenBirthdays(buckets []BirthdayBucket) []string {
	var out []string
	for _, bucket := range buckets {
		for _, e := range bucket.Entries {
			out = append(out, e.Label())
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func observedIn(month time.Month, day, year int) time.Time {
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
