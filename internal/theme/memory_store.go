package theme

import "sync"

// MemoryStore keeps preference values for the lifetime of the process.
type MemoryStore struct {
	mutex  sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// NewMemoryStoreWithTheme seeds the store with an already known preference.
func NewMemoryStoreWithTheme(theme Theme) *MemoryStore {
	store := NewMemoryStore()
	store.Set(StorageKey, string(theme))
	return store
}

func (store *MemoryStore) Get(key string) (string, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	value, found := store.values[key]
	return value, found
}

func (store *MemoryStore) Set(key string, value string) {
	store.mutex.Lock()
	store.values[key] = value
	store.mutex.Unlock()
}
