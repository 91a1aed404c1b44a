package apply

// IDMap maps source row keys to target surrogate ids for the current run.
// It is never persisted.
type IDMap struct {
	ids map[string]map[string]uint
}

// NewIDMap returns an empty map.
func NewIDMap() *IDMap {
	return &IDMap{ids: make(map[string]map[string]uint)}
}

// Put records id under every non-empty key.
func (m *IDMap) Put(entity string, id uint, keys ...string) {
	byKey, ok := m.ids[entity]
	if !ok {
		byKey = make(map[string]uint)
		m.ids[entity] = byKey
	}
	for _, k := range keys {
		if k != "" {
			byKey[k] = id
		}
	}
}

// Get returns the id stored under key.
func (m *IDMap) Get(entity, key string) (uint, bool) {
	if key == "" {
		return 0, false
	}
	id, ok := m.ids[entity][key]
	return id, ok
}

// Optional resolves a nullable foreign key. Unknown refs become nil.
func (m *IDMap) Optional(entity, key string) *uint {
	if id, ok := m.Get(entity, key); ok {
		return &id
	}
	return nil
}

// Len is the number of keys recorded for entity.
func (m *IDMap) Len(entity string) int {
	return len(m.ids[entity])
}
