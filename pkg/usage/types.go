package usage

import (
	"context"
	"time"
)

// Record is a single usage entry for one generation request.
type Record struct {
	// ID is a unique record identifier.
	ID string

	// UserID is the caller-supplied user identifier.
	UserID string

	// Timestamp is when the request completed.
	Timestamp time.Time

	// RequestType categorizes the request ("text_generation").
	RequestType string

	// InputTokens and OutputTokens are the token counts for the request.
	InputTokens  int
	OutputTokens int

	// ResponseTimeMS is the end-to-end latency in milliseconds.
	ResponseTimeMS int64

	// Filtered is true when the request was blocked by the content
	// filter.
	Filtered bool
}

// DayBucket aggregates usage for a single day.
type DayBucket struct {
	// Date is the day in "2006-01-02" form.
	Date string `json:"date"`

	// Requests is the number of requests that day.
	Requests int `json:"requests"`

	// Tokens is the total token count (input + output) that day.
	Tokens int `json:"tokens"`
}

// Stats is the aggregate usage for a user over a day range.
type Stats struct {
	UserID                string      `json:"user_id"`
	PeriodDays            int         `json:"period_days"`
	TotalRequests         int         `json:"total_requests"`
	TotalInputTokens      int         `json:"total_input_tokens"`
	TotalOutputTokens     int         `json:"total_output_tokens"`
	AverageResponseTimeMS int64       `json:"average_response_time_ms"`
	RequestsByDay         []DayBucket `json:"requests_by_day"`
	ContentFilterEvents   int         `json:"content_filter_events"`
	LastRequest           string      `json:"last_request,omitempty"`
	Status                string      `json:"status"`
}

// Store persists usage records and serves aggregates.
type Store interface {
	// Save persists a single record.
	Save(ctx context.Context, rec *Record) error

	// Stats returns aggregate usage for userID over the last days days.
	Stats(ctx context.Context, userID string, days int) (*Stats, error)

	// Prune deletes records older than cutoff and returns the number
	// deleted.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases store resources.
	Close() error
}
