package store

import (
	"context"
	"encoding/json"
	"sync"

	"go-restaurant-sync/internal/model"
)

// Memory is an in-process Store. Values are kept as JSON so every reader gets
// its own copy, the way a real remote store behaves.
type Memory struct {
	mu          sync.Mutex
	data        map[string][]byte
	subscribers map[string]map[chan Document]struct{}
	writeCount  int
}

func NewMemory() *Memory {
	return &Memory{
		data:        make(map[string][]byte),
		subscribers: make(map[string]map[chan Document]struct{}),
	}
}

func (m *Memory) Get(ctx context.Context, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode(key, m.data[key]), nil
}

func (m *Memory) Put(ctx context.Context, key string, state model.SystemState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = body
	m.writeCount++
	for ch := range m.subscribers[key] {
		offerLatest(ch, decode(key, body))
	}
	return nil
}

// PutRaw stores body as-is, bypassing encoding. Used to plant malformed data.
func (m *Memory) PutRaw(key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = body
	for ch := range m.subscribers[key] {
		offerLatest(ch, decode(key, body))
	}
}

func (m *Memory) Subscribe(ctx context.Context, key string) (<-chan Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan Document, 1)

	m.mu.Lock()
	if m.subscribers[key] == nil {
		m.subscribers[key] = make(map[chan Document]struct{})
	}
	m.subscribers[key][ch] = struct{}{}
	offerLatest(ch, decode(key, m.data[key]))
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subscribers[key], ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// WriteCount returns the number of Put calls that succeeded.
func (m *Memory) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeCount
}
