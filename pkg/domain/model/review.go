package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ReviewCadence tracks the periodic review obligation of a risk. Instances are
// immutable; Reviewed returns a new cadence instead of mutating the receiver.
type ReviewCadence struct {
	months       int
	lastReviewed *time.Time
	nextReview   *time.Time
}

// NewReviewCadence creates a review cadence. When lastReviewed is given without
// an explicit nextReview, the next review date is derived by calendar-month
// arithmetic (lastReviewed + months).
func NewReviewCadence(months int, lastReviewed, nextReview *time.Time) (ReviewCadence, error) {
	if months <= 0 {
		return ReviewCadence{}, goerr.Wrap(ErrInvalidField, "review period must be a positive number of months",
			goerr.V(FieldKey, "reviewPeriodMonths"), goerr.V(ValueKey, months))
	}

	cadence := ReviewCadence{months: months}
	if lastReviewed != nil {
		t := *lastReviewed
		cadence.lastReviewed = &t
	}
	switch {
	case nextReview != nil:
		t := *nextReview
		cadence.nextReview = &t
	case lastReviewed != nil:
		t := lastReviewed.AddDate(0, months, 0)
		cadence.nextReview = &t
	}
	return cadence, nil
}

// Months returns the review period in months
func (c ReviewCadence) Months() int {
	return c.months
}

// LastReviewed returns the date of the most recent review, if any
func (c ReviewCadence) LastReviewed() *time.Time {
	if c.lastReviewed == nil {
		return nil
	}
	t := *c.lastReviewed
	return &t
}

// NextReview returns the date the next review becomes due, if known
func (c ReviewCadence) NextReview() *time.Time {
	if c.nextReview == nil {
		return nil
	}
	t := *c.nextReview
	return &t
}

// IsDue reports whether a review is due at the given time. A cadence without a
// next review date is never due.
func (c ReviewCadence) IsDue(asOf time.Time) bool {
	return c.nextReview != nil && !asOf.Before(*c.nextReview)
}

// Reviewed returns a new cadence recording a review at the given date, with the
// next review due one period later
func (c ReviewCadence) Reviewed(reviewedAt time.Time) ReviewCadence {
	last := reviewedAt
	next := reviewedAt.AddDate(0, c.months, 0)
	return ReviewCadence{
		months:       c.months,
		lastReviewed: &last,
		nextReview:   &next,
	}
}
