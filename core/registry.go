package core

import (
	"strings"
	"sync"
)

// AdapterRecord is the local representation of one remote adapter.
type AdapterRecord struct {
	Name  string
	Proxy AdapterProxy
}

// HandleID returns the identity of the record's proxy.
func (r AdapterRecord) HandleID() string {
	if r.Proxy == nil {
		return ""
	}
	return r.Proxy.HandleID()
}

// AdapterRegistry stores adapter records in an arena indexed by name and by
// proxy handle id. Iteration follows insertion order.
type AdapterRegistry struct {
	mu      sync.RWMutex
	next    uint64
	records map[uint64]AdapterRecord
	byName  map[string]uint64
	byProxy map[string]uint64
	order   []uint64
}

func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{
		records: make(map[uint64]AdapterRecord),
		byName:  make(map[string]uint64),
		byProxy: make(map[string]uint64),
	}
}

func (r *AdapterRegistry) Insert(name string, proxy AdapterProxy) (AdapterRecord, error) {
	if strings.TrimSpace(name) == "" {
		return AdapterRecord{}, InvalidParameterError("name", "adapter name is required")
	}
	if proxy == nil {
		return AdapterRecord{}, InvalidParameterError("proxy", "adapter proxy is required")
	}
	handleID := proxy.HandleID()
	if strings.TrimSpace(handleID) == "" {
		return AdapterRecord{}, InvalidParameterError("proxy", "adapter proxy handle id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return AdapterRecord{}, AdapterConflictError(name, handleID)
	}
	if _, exists := r.byProxy[handleID]; exists {
		return AdapterRecord{}, AdapterConflictError(name, handleID)
	}

	r.next++
	slot := r.next
	record := AdapterRecord{Name: name, Proxy: proxy}
	r.records[slot] = record
	r.byName[name] = slot
	r.byProxy[handleID] = slot
	r.order = append(r.order, slot)
	return record, nil
}

// Remove deletes the record. Removing an identity that is no longer tracked
// returns a not found error.
func (r *AdapterRegistry) Remove(record AdapterRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.byName[record.Name]
	if !ok {
		return NotFoundError(record.Name)
	}
	stored := r.records[slot]
	if handleID := record.HandleID(); handleID != "" && handleID != stored.HandleID() {
		return NotFoundError(handleID)
	}

	delete(r.records, slot)
	delete(r.byName, stored.Name)
	delete(r.byProxy, stored.HandleID())
	for idx, candidate := range r.order {
		if candidate == slot {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *AdapterRegistry) FindByName(name string) (AdapterRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.byName[name]
	if !ok {
		return AdapterRecord{}, false
	}
	return r.records[slot], true
}

func (r *AdapterRegistry) FindByProxy(handleID string) (AdapterRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.byProxy[handleID]
	if !ok {
		return AdapterRecord{}, false
	}
	return r.records[slot], true
}

// All returns a copy of the records in insertion order.
func (r *AdapterRegistry) All() []AdapterRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AdapterRecord, 0, len(r.order))
	for _, slot := range r.order {
		out = append(out, r.records[slot])
	}
	return out
}

func (r *AdapterRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
