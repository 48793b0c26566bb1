package domain

import "time"

// BatchDateLayout is the layout of DatedBatch.Date.
const BatchDateLayout = "20060102"

// BatchDate formats t as a batch date in UTC.
func BatchDate(t time.Time) string {
	return t.UTC().Format(BatchDateLayout)
}

// ParseBatchDate parses a batch date as midnight UTC.
func ParseBatchDate(s string) (time.Time, error) {
	return time.ParseInLocation(BatchDateLayout, s, time.UTC)
}
