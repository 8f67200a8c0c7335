// Package iocache persists submitted systems and their outputs.
package iocache

import (
	"sync"

	"github.com/benchboard/benchboard/internal/contract"
)

// SystemStoreManager holds the configured SystemStore.
type SystemStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	systems      contract.SystemStore
}

var _ contract.StoreManager = &SystemStoreManager{} // Compile-time check

// GetSystemStore returns the SystemStore.
func (mgr *SystemStoreManager) GetSystemStore() contract.SystemStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.systems
}
