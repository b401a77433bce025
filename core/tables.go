package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// currentTableVersion defines the version of the stored score table format.
const currentTableVersion = 1

// currentHistoryVersion defines the version of the stored selection history format.
const currentHistoryVersion = 1

// tableKey is the store key of a student's burnout table.
func tableKey(studentID string) string {
	return "scores:" + studentID
}

// historyKey is the store key of a student's selection history.
func historyKey(studentID string) string {
	return "history:" + studentID
}

// checkTableHit attempts to retrieve and validate a stored table.
// A version mismatch, an entry older than ttl or an undecodable value is a miss.
func checkTableHit(store contract.ScoreTableStore, studentID string, ttl time.Duration) *schema.ScoreTable {
	if store == nil {
		return nil
	}
	data, version, ts, err := store.Get(tableKey(studentID))
	if err != nil || version != currentTableVersion {
		return nil
	}
	if ttl > 0 && time.Since(time.Unix(ts, 0)) > ttl {
		return nil
	}
	var table schema.ScoreTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil
	}
	return &table
}

// saveTable stores the table under the student's key.
func saveTable(store contract.ScoreTableStore, table *schema.ScoreTable) error {
	if store == nil || table == nil {
		return nil
	}
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode score table: %w", err)
	}
	return store.Set(tableKey(table.StudentID), data, currentTableVersion, table.GeneratedAt.Unix())
}

// loadHistory returns the stored selection history, or nil when there is none.
func loadHistory(store contract.ScoreTableStore, studentID string) []string {
	if store == nil {
		return nil
	}
	data, version, _, err := store.Get(historyKey(studentID))
	if err != nil || version != currentHistoryVersion {
		return nil
	}
	var history []string
	if err := json.Unmarshal(data, &history); err != nil {
		return nil
	}
	return history
}

// saveHistory replaces the stored selection history.
func saveHistory(store contract.ScoreTableStore, studentID string, history []string) error {
	if store == nil {
		return nil
	}
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return store.Set(historyKey(studentID), data, currentHistoryVersion, time.Now().Unix())
}
