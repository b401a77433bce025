// Package iocache persists score tables and run history.
package iocache

import (
	"sync"

	"github.com/huangsam/courseload/internal/contract"
)

// StoreManager manages the score table store and the run store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	tables       contract.ScoreTableStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager wraps already opened stores. Either may be nil.
func NewStoreManager(tables contract.ScoreTableStore, runs contract.RunStore) *StoreManager {
	return &StoreManager{tables: tables, runs: runs}
}

// GetTableStore returns the score table store.
func (mgr *StoreManager) GetTableStore() contract.ScoreTableStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.tables
}

// GetRunStore returns the run store.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
