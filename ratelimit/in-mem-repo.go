package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// InMemWindowRepo is an in-process WindowRepo used in tests and
// local development. FailReads and FailWrites simulate a persistent
// store outage.
type InMemWindowRepo struct {
	lock    sync.Mutex
	windows map[string][]time.Time

	FailReads  bool
	FailWrites bool
}

func NewInMemWindowRepo() *InMemWindowRepo {
	return &InMemWindowRepo{
		windows: make(map[string][]time.Time),
	}
}

var errStoreUnavailable = errors.New("window store unavailable")

func (m *InMemWindowRepo) Get(ctx context.Context, key string) ([]time.Time, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.FailReads {
		return nil, errStoreUnavailable
	}
	stamps := m.windows[key]
	out := make([]time.Time, len(stamps))
	copy(out, stamps)
	return out, nil
}

func (m *InMemWindowRepo) Put(ctx context.Context, key string, timestamps []time.Time) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.FailWrites {
		return errStoreUnavailable
	}
	stored := make([]time.Time, len(timestamps))
	copy(stored, timestamps)
	m.windows[key] = stored
	return nil
}

func (m *InMemWindowRepo) Window(key string) []time.Time {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.windows[key]
}
