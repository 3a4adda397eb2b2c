package storage

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RecordRecommendation appends an outcome to the history log.
func (s *SQLiteStorage) RecordRecommendation(rec RecommendationRecord) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO recommendation_history
			(request_id, query_hash, timestamp, outcome, bundle_size, total_cost, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		rec.RequestID,
		rec.QueryHash,
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Outcome,
		rec.BundleSize,
		rec.TotalCost,
		rec.DurationMS,
	)

	if err != nil {
		return fmt.Errorf("failed to record recommendation %s: %w", rec.RequestID, err)
	}
	return nil
}

// RecentRecommendations returns history records newer than since, newest first.
func (s *SQLiteStorage) RecentRecommendations(since time.Time) ([]RecommendationRecord, error) {
	if !s.enabled || s.db == nil {
		return []RecommendationRecord{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT request_id, query_hash, timestamp, outcome, bundle_size, total_cost, duration_ms
		FROM recommendation_history
		WHERE timestamp >= ?
		ORDER BY timestamp DESC, id DESC
	`

	rows, err := s.db.Query(query, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation history: %w", err)
	}
	defer rows.Close()

	records := []RecommendationRecord{}
	for rows.Next() {
		var rec RecommendationRecord
		var timestampStr string

		if err := rows.Scan(
			&rec.RequestID,
			&rec.QueryHash,
			&timestampStr,
			&rec.Outcome,
			&rec.BundleSize,
			&rec.TotalCost,
			&rec.DurationMS,
		); err != nil {
			s.logger.Warn("failed to scan history row", zap.Error(err))
			continue
		}

		rec.Timestamp, err = time.Parse(time.RFC3339, timestampStr)
		if err != nil {
			s.logger.Warn("failed to parse timestamp", zap.Error(err))
			continue
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// Cleanup removes history records older than retention.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339)

	res, err := s.db.Exec("DELETE FROM recommendation_history WHERE timestamp < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup recommendation_history: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("pruned recommendation history", zap.Int64("rows", n))
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
