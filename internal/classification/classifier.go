// Package classification buckets parsed records by delivery status.
//
// The rules compare a record's target date with "today" at day granularity:
//
//	no target date          on_track
//	target after today      on_track
//	target before today     delivered
//	target today, no answer on_track, listed first and flagged perguntar
//	target today, arrived   delivered
//	target today, missing   late
//
// Classification is a pure function of its inputs; the same records,
// confirmations and day always produce the same result.
package classification

import (
	"time"

	"deliveryboard/pkg/contracts/domain"
)

// Today returns the calendar day of now in loc
func Today(now time.Time, loc *time.Location) domain.Date {
	if loc == nil {
		loc = time.Local
	}
	return domain.DateOf(now.In(loc))
}

// Classify places every record in exactly one bucket. Input order is kept
// inside each bucket, except that on_track lists records awaiting a same-day
// answer ahead of the others.
func Classify(records []domain.Record, confirmations map[string]bool, today domain.Date) domain.ClassificationResult {
	result := domain.EmptyResult()
	var priority, rest []domain.ClassifiedRecord

	for _, rec := range records {
		cr := domain.ClassifiedRecord{Record: rec}
		if arrived, ok := confirmations[rec.ID]; ok {
			cr.Confirmed = &arrived
		}

		switch {
		case rec.TargetDate == nil || rec.TargetDate.After(today):
			cr.Bucket = domain.BucketOnTrack
			rest = append(rest, cr)
		case rec.TargetDate.Before(today):
			cr.Bucket = domain.BucketDelivered
			result.Delivered = append(result.Delivered, cr)
		case cr.Confirmed == nil:
			cr.Bucket = domain.BucketOnTrack
			cr.Ask = true
			priority = append(priority, cr)
		case *cr.Confirmed:
			cr.Bucket = domain.BucketDelivered
			result.Delivered = append(result.Delivered, cr)
		default:
			cr.Bucket = domain.BucketLate
			result.Late = append(result.Late, cr)
		}
	}

	result.OnTrack = append(append(result.OnTrack, priority...), rest...)
	return result
}
