// Package statestore holds world-state implementations used outside a Fabric
// peer: an in-memory map for tests and dry runs, and a leveldb database with
// per-transaction sessions.
package statestore

import (
	"errors"
	"sort"
	"sync"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
)

var (
	ErrEmptyKey       = errors.New("key must not be an empty string")
	ErrEmptyEvent     = errors.New("event name must not be an empty string")
	ErrIteratorClosed = errors.New("iterator is closed")
	ErrIteratorDone   = errors.New("no more results")
)

// Event is a notification emitted by a transaction.
type Event struct {
	Name    string
	Payload []byte
}

// Memory is a sorted in-memory world state. Writes are visible immediately.
type Memory struct {
	sync.RWMutex
	state     map[string][]byte
	events    []Event
	openIters int
}

func NewMemory() *Memory {
	return &Memory{state: make(map[string][]byte)}
}

func (m *Memory) GetState(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	m.RLock()
	defer m.RUnlock()
	v, ok := m.state[key]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (m *Memory) PutState(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.Lock()
	defer m.Unlock()
	m.state[key] = clone(value)
	return nil
}

func (m *Memory) DelState(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.Lock()
	defer m.Unlock()
	delete(m.state, key)
	return nil
}

// GetStateByRange snapshots the keys in [startKey, endKey) in byte order.
func (m *Memory) GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
	m.Lock()
	defer m.Unlock()

	keys := make([]string, 0, len(m.state))
	for k := range m.state {
		if startKey != "" && k < startKey {
			continue
		}
		if endKey != "" && k >= endKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]*queryresult.KV, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, &queryresult.KV{Key: k, Value: clone(m.state[k])})
	}
	m.openIters++
	return &sliceIterator{kvs: kvs, onClose: m.iteratorClosed}, nil
}

func (m *Memory) SetEvent(name string, payload []byte) error {
	if name == "" {
		return ErrEmptyEvent
	}
	m.Lock()
	defer m.Unlock()
	m.events = append(m.events, Event{Name: name, Payload: clone(payload)})
	return nil
}

// Events returns every event emitted so far, oldest first.
func (m *Memory) Events() []Event {
	m.RLock()
	defer m.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Len is the number of stored keys.
func (m *Memory) Len() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.state)
}

// OpenIterators counts range iterators not yet closed.
func (m *Memory) OpenIterators() int {
	m.RLock()
	defer m.RUnlock()
	return m.openIters
}

func (m *Memory) iteratorClosed() {
	m.Lock()
	m.openIters--
	m.Unlock()
}

type sliceIterator struct {
	kvs     []*queryresult.KV
	pos     int
	closed  bool
	onClose func()
}

func (it *sliceIterator) HasNext() bool {
	return !it.closed && it.pos < len(it.kvs)
}

func (it *sliceIterator) Next() (*queryresult.KV, error) {
	if it.closed {
		return nil, ErrIteratorClosed
	}
	if it.pos >= len(it.kvs) {
		return nil, ErrIteratorDone
	}
	kv := it.kvs[it.pos]
	it.pos++
	return kv, nil
}

func (it *sliceIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.onClose != nil {
		it.onClose()
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
