package storage

import "time"

// RecommendationRecord is one entry of the recommendation history.
// Only a hash of the request sentence is stored.
type RecommendationRecord struct {
	// RequestID is a unique identifier for the request (UUID).
	RequestID string `json:"request_id"`

	// QueryHash is the SHA256 hash of the intent sentence.
	QueryHash string `json:"query_hash"`

	// Timestamp is when the request completed.
	Timestamp time.Time `json:"timestamp"`

	// Outcome is "success" or a failure kind.
	Outcome string `json:"outcome"`

	// BundleSize is the number of items returned (0 on failure).
	BundleSize int `json:"bundle_size"`

	// TotalCost is the bundle's integer total cost.
	TotalCost int `json:"total_cost"`

	// DurationMS is the request latency in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}
