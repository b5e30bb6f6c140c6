package statestore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrSessionDone = errors.New("session already committed or discarded")

// LevelDB is a world state persisted in a leveldb database. All access goes
// through a Session.
type LevelDB struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Begin starts a transaction scope. Reads see the database as of Begin and
// do not see the session's own pending writes, matching how a peer simulates
// a transaction.
func (l *LevelDB) Begin() (*Session, error) {
	snap, err := l.db.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return &Session{db: l.db, snap: snap, batch: new(leveldb.Batch)}, nil
}

// Update runs fn in a new session and commits if fn succeeds. It returns the
// event fn emitted, if any.
func (l *LevelDB) Update(fn func(s *Session) error) (*Event, error) {
	s, err := l.Begin()
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		s.Discard()
		return nil, err
	}
	return s.Commit()
}

// View runs fn in a new session and discards whatever it wrote.
func (l *LevelDB) View(fn func(s *Session) error) error {
	s, err := l.Begin()
	if err != nil {
		return err
	}
	defer s.Discard()
	return fn(s)
}

// Session buffers the writes and the event of one transaction.
type Session struct {
	sync.Mutex
	db    *leveldb.DB
	snap  *leveldb.Snapshot
	batch *leveldb.Batch
	event *Event
	done  bool
}

func (s *Session) GetState(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	s.Lock()
	defer s.Unlock()
	if s.done {
		return nil, ErrSessionDone
	}
	v, err := s.snap.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Session) PutState(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.Lock()
	defer s.Unlock()
	if s.done {
		return ErrSessionDone
	}
	s.batch.Put([]byte(key), value)
	return nil
}

func (s *Session) DelState(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.Lock()
	defer s.Unlock()
	if s.done {
		return ErrSessionDone
	}
	s.batch.Delete([]byte(key))
	return nil
}

func (s *Session) GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
	s.Lock()
	defer s.Unlock()
	if s.done {
		return nil, ErrSessionDone
	}
	r := &util.Range{}
	if startKey != "" {
		r.Start = []byte(startKey)
	}
	if endKey != "" {
		r.Limit = []byte(endKey)
	}
	it := s.snap.NewIterator(r, nil)
	return newLevelIterator(it), nil
}

// SetEvent keeps only the last event, as a peer does for a transaction.
func (s *Session) SetEvent(name string, payload []byte) error {
	if name == "" {
		return ErrEmptyEvent
	}
	s.Lock()
	defer s.Unlock()
	if s.done {
		return ErrSessionDone
	}
	s.event = &Event{Name: name, Payload: clone(payload)}
	return nil
}

// Commit writes the buffered changes atomically and returns the event.
func (s *Session) Commit() (*Event, error) {
	s.Lock()
	defer s.Unlock()
	if s.done {
		return nil, ErrSessionDone
	}
	s.done = true
	defer s.snap.Release()
	if err := s.db.Write(s.batch, nil); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.event, nil
}

// Discard drops the buffered changes. It is safe to call after Commit.
func (s *Session) Discard() {
	s.Lock()
	defer s.Unlock()
	if s.done {
		return
	}
	s.done = true
	s.snap.Release()
	s.batch.Reset()
	s.event = nil
}

// levelIterator adapts a leveldb iterator, which advances on Next, to the
// HasNext/Next shape of the chaincode shim. An error hit while advancing is
// held and returned by the following Next so a scan cannot end silently short.
type levelIterator struct {
	it     iterator.Iterator
	more   bool
	err    error
	closed bool
}

func newLevelIterator(it iterator.Iterator) *levelIterator {
	li := &levelIterator{it: it}
	li.advance()
	return li
}

func (li *levelIterator) advance() {
	li.more = li.it.Next()
	if !li.more {
		li.err = li.it.Error()
	}
}

func (li *levelIterator) HasNext() bool {
	return !li.closed && (li.more || li.err != nil)
}

func (li *levelIterator) Next() (*queryresult.KV, error) {
	if li.closed {
		return nil, ErrIteratorClosed
	}
	if !li.more {
		if li.err != nil {
			err := li.err
			li.err = nil
			return nil, fmt.Errorf("iterate: %w", err)
		}
		return nil, ErrIteratorDone
	}
	// key and value slices are only valid until the next move
	kv := &queryresult.KV{
		Key:   string(li.it.Key()),
		Value: clone(li.it.Value()),
	}
	li.advance()
	return kv, nil
}

func (li *levelIterator) Close() error {
	if li.closed {
		return nil
	}
	li.closed = true
	li.it.Release()
	return li.it.Error()
}
