package storage

import (
	"encoding/json"
	"fmt"

	"github.com/khanglvm/gift-hub/internal/catalog"
)

// SaveSnapshot replaces the stored catalog for modelID in one transaction.
func (s *SQLiteStorage) SaveSnapshot(modelID string, items []catalog.Item, embeddings [][]float32) error {
	if !s.enabled || s.db == nil {
		return nil
	}
	if len(items) != len(embeddings) {
		return fmt.Errorf("%w: %d items, %d embeddings", catalog.ErrMisaligned, len(items), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM catalog_snapshot WHERE model_id = ?", modelID); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO catalog_snapshot (model_id, position, item_id, name, price, tags, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		tags, err := json.Marshal(it.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags for item %d: %w", it.ID, err)
		}
		vector, err := vectorToJSON(embeddings[i])
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(modelID, i, it.ID, it.Name, it.Price, string(tags), vector); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored catalog for modelID in catalog order.
func (s *SQLiteStorage) LoadSnapshot(modelID string) ([]catalog.Item, [][]float32, bool, error) {
	if !s.enabled || s.db == nil {
		return nil, nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT item_id, name, price, tags, vector
		FROM catalog_snapshot
		WHERE model_id = ?
		ORDER BY position ASC
	`, modelID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	var vectors [][]float32
	for rows.Next() {
		var it catalog.Item
		var tagsJSON, vectorJSON string
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &tagsJSON, &vectorJSON); err != nil {
			return nil, nil, false, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &it.Tags); err != nil {
			return nil, nil, false, fmt.Errorf("failed to parse tags for item %d: %w", it.ID, err)
		}
		vec, err := jsonToVector(vectorJSON)
		if err != nil {
			return nil, nil, false, fmt.Errorf("failed to parse embedding for item %d: %w", it.ID, err)
		}
		items = append(items, it)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if len(items) == 0 {
		return nil, nil, false, nil
	}
	return items, vectors, true, nil
}

// SnapshotModels lists model ids with a stored snapshot and their item counts.
func (s *SQLiteStorage) SnapshotModels() (map[string]int, error) {
	out := make(map[string]int)
	if !s.enabled || s.db == nil {
		return out, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT model_id, COUNT(*) FROM catalog_snapshot GROUP BY model_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot models: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var model string
		var count int
		if err := rows.Scan(&model, &count); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot model: %w", err)
		}
		out[model] = count
	}
	return out, rows.Err()
}
