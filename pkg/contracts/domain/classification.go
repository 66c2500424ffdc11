package domain

import "time"

// Bucket is the delivery status a record is classified into
type Bucket string

const (
	BucketOnTrack   Bucket = "on_track"
	BucketDelivered Bucket = "delivered"
	BucketLate      Bucket = "late"
)

// ClassifiedRecord is a Record tagged with its bucket and the human
// confirmation on file for it, if any.
type ClassifiedRecord struct {
	Record
	Bucket Bucket `json:"bucket"`
	// Confirmed is nil when no confirmation has been recorded.
	Confirmed *bool `json:"confirmed"`
	// Ask marks records due today that still need a human answer.
	Ask bool `json:"perguntar"`
}

// ClassificationResult holds the three ordered buckets of one report
type ClassificationResult struct {
	OnTrack   []ClassifiedRecord `json:"on_track"`
	Delivered []ClassifiedRecord `json:"delivered"`
	Late      []ClassifiedRecord `json:"late"`
}

// EmptyResult returns a result whose buckets encode as [] instead of null
func EmptyResult() ClassificationResult {
	return ClassificationResult{
		OnTrack:   []ClassifiedRecord{},
		Delivered: []ClassifiedRecord{},
		Late:      []ClassifiedRecord{},
	}
}

// Counts returns the size of every bucket
func (r ClassificationResult) Counts() map[Bucket]int {
	return map[Bucket]int{
		BucketOnTrack:   len(r.OnTrack),
		BucketDelivered: len(r.Delivered),
		BucketLate:      len(r.Late),
	}
}

// Bucket returns the records of bucket b
func (r ClassificationResult) Bucket(b Bucket) []ClassifiedRecord {
	switch b {
	case BucketOnTrack:
		return r.OnTrack
	case BucketDelivered:
		return r.Delivered
	case BucketLate:
		return r.Late
	default:
		return nil
	}
}

// Find returns the classified record with the given id
func (r ClassificationResult) Find(id string) (ClassifiedRecord, bool) {
	for _, bucket := range [][]ClassifiedRecord{r.OnTrack, r.Delivered, r.Late} {
		for _, cr := range bucket {
			if cr.ID == id {
				return cr, true
			}
		}
	}
	return ClassifiedRecord{}, false
}

// SourceFile describes the report file a snapshot was parsed from
type SourceFile struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ReportSnapshot is the published, immutable state of one report kind.
// Records keeps the parse output so confirmations can be re-applied
// without re-reading the source file.
type ReportSnapshot struct {
	Kind        RecordKind           `json:"kind"`
	Result      ClassificationResult `json:"result"`
	Records     []Record             `json:"-"`
	Source      SourceFile           `json:"source"`
	Today       Date                 `json:"today"`
	RefreshedAt time.Time            `json:"refreshed_at"`
}

// ConfirmationEntry is a human answer to "did this arrive?"
type ConfirmationEntry struct {
	RecordID   string     `json:"id"`
	Arrived    bool       `json:"arrived"`
	Kind       RecordKind `json:"kind"`
	RecordedAt time.Time  `json:"recorded_at"`
}
