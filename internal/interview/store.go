package interview

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrCallNotFound is returned by LoadCall for an unknown call identifier.
var ErrCallNotFound = errors.New("call not found")

// Store persists interview records and call→caller links.
type Store interface {
	// LoadInterview returns the caller's record, or an empty one on first
	// contact.
	LoadInterview(ctx context.Context, phoneNumber string) (*Interview, error)
	// SaveInterview writes the whole record.
	SaveInterview(ctx context.Context, iv *Interview) error
	// LoadCall returns the caller linked to callSid, or ErrCallNotFound.
	LoadCall(ctx context.Context, callSid string) (*Call, error)
	// SaveCall links a call to a caller.
	SaveCall(ctx context.Context, call Call) error
	// ListPhoneNumbers returns every caller with a stored record.
	ListPhoneNumbers(ctx context.Context) ([]string, error)
}

// MemoryStore is an in-process Store. Records are copied on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	interviews map[string]*Interview
	calls      map[string]Call
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		interviews: make(map[string]*Interview),
		calls:      make(map[string]Call),
	}
}

func (m *MemoryStore) LoadInterview(_ context.Context, phoneNumber string) (*Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if iv, ok := m.interviews[phoneNumber]; ok {
		return iv.Clone(), nil
	}
	return New(phoneNumber), nil
}

func (m *MemoryStore) SaveInterview(_ context.Context, iv *Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviews[iv.PhoneNumber] = iv.Clone()
	return nil
}

func (m *MemoryStore) LoadCall(_ context.Context, callSid string) (*Call, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	call, ok := m.calls[callSid]
	if !ok {
		return nil, ErrCallNotFound
	}
	return &call, nil
}

func (m *MemoryStore) SaveCall(_ context.Context, call Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[call.CallSid] = call
	return nil
}

func (m *MemoryStore) ListPhoneNumbers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	numbers := make([]string, 0, len(m.interviews))
	for n := range m.interviews {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)
	return numbers, nil
}
