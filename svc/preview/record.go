package preview

import (
	"maps"
	"slices"
	"time"
)

// Record is a generated email draft kept until it expires.
type Record struct {
	ID        string         `json:"id"`
	Subject   string         `json:"subject"`
	HTML      string         `json:"html"`
	Prompt    string         `json:"prompt"`
	Headers   []string       `json:"headers"`
	SampleRow map[string]any `json:"sampleRow"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ExpiresAt reports when the record stops being retrievable.
func (r *Record) ExpiresAt(ttl time.Duration) time.Time {
	return r.CreatedAt.Add(ttl)
}

// Expired reports whether now is at or past the record's expiry.
func (r *Record) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(r.ExpiresAt(ttl))
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Headers = slices.Clone(r.Headers)
	c.SampleRow = maps.Clone(r.SampleRow)
	return &c
}

// Stats summarises live records.
type Stats struct {
	Total  int64 `json:"total"`
	Recent int64 `json:"recent"`
}
