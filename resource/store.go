package resource

import desim "github.com/cristiklein/simpy"

// StorePutRequest is the Event returned by Store.Put (and FilterStore's
// embedded Put): it succeeds once the store has room for another item.
type StorePutRequest struct {
	*desim.Event
	item any
	seq  uint64
}

// StoreGetRequest is the Event returned by Store.Get: it succeeds once
// the store holds an item, and its Value() is that item.
type StoreGetRequest struct {
	*desim.Event
	seq uint64
}

// Store holds up to Capacity items in FIFO order. Put succeeds once
// there is room; Get succeeds once an item is available and returns the
// oldest one. Grounded on spec.md §4.8.
type Store struct {
	env      *desim.Environment
	capacity int
	items    []any
	puts     []*StorePutRequest
	gets     []*StoreGetRequest
	seq      uint64
}

// NewStore creates a Store with the given item capacity.
func NewStore(env *desim.Environment, capacity int) *Store {
	return &Store{env: env, capacity: capacity}
}

// Capacity returns the maximum number of items the store can hold.
func (s *Store) Capacity() int { return s.capacity }

// Items returns a snapshot of the items currently held, oldest first.
func (s *Store) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Put queues a request to add item to the store.
func (s *Store) Put(item any) *StorePutRequest {
	s.seq++
	req := &StorePutRequest{Event: s.env.NewEvent(), item: item, seq: s.seq}
	s.puts = append(s.puts, req)
	s.runService()
	return req
}

// Get queues a request for the oldest item in the store.
func (s *Store) Get() *StoreGetRequest {
	s.seq++
	req := &StoreGetRequest{Event: s.env.NewEvent(), seq: s.seq}
	s.gets = append(s.gets, req)
	s.runService()
	return req
}

func (s *Store) runService() {
	runService(func() bool {
		progressed := false
		for len(s.puts) > 0 && len(s.items) < s.capacity {
			req := s.puts[0]
			s.puts = s.puts[1:]
			s.items = append(s.items, req.item)
			_ = req.Succeed(nil)
			s.env.Logger().Log(desim.LogEntry{
				Level:    desim.LevelDebug,
				Category: "resource",
				Time:     s.env.Now(),
				Message:  "store put admitted",
				Fields:   map[string]any{"count": len(s.items)},
			})
			progressed = true
		}
		for len(s.gets) > 0 && len(s.items) > 0 {
			req := s.gets[0]
			s.gets = s.gets[1:]
			item := s.items[0]
			s.items = s.items[1:]
			_ = req.Succeed(item)
			s.env.Logger().Log(desim.LogEntry{
				Level:    desim.LevelDebug,
				Category: "resource",
				Time:     s.env.Now(),
				Message:  "store get admitted",
				Fields:   map[string]any{"count": len(s.items)},
			})
			progressed = true
		}
		return progressed
	})
}

// FilterGetRequest is the Event returned by FilterStore.Get: it succeeds
// once some item in the store satisfies its predicate.
type FilterGetRequest struct {
	*desim.Event
	predicate func(any) bool
	seq       uint64
}

// FilterStore holds up to Capacity items, like Store, but Get takes a
// predicate and returns the first matching item in insertion order
// rather than always the oldest. Grounded on spec.md §4.8.
type FilterStore struct {
	env      *desim.Environment
	capacity int
	items    []any
	puts     []*StorePutRequest
	gets     []*FilterGetRequest
	seq      uint64
}

// NewFilterStore creates a FilterStore with the given item capacity.
func NewFilterStore(env *desim.Environment, capacity int) *FilterStore {
	return &FilterStore{env: env, capacity: capacity}
}

// Capacity returns the maximum number of items the store can hold.
func (s *FilterStore) Capacity() int { return s.capacity }

// Items returns a snapshot of the items currently held, in insertion
// order.
func (s *FilterStore) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Put queues a request to add item to the store.
func (s *FilterStore) Put(item any) *StorePutRequest {
	s.seq++
	req := &StorePutRequest{Event: s.env.NewEvent(), item: item, seq: s.seq}
	s.puts = append(s.puts, req)
	s.runService()
	return req
}

// Get queues a request for the first item, in insertion order, that
// satisfies predicate.
func (s *FilterStore) Get(predicate func(any) bool) *FilterGetRequest {
	s.seq++
	req := &FilterGetRequest{Event: s.env.NewEvent(), predicate: predicate, seq: s.seq}
	s.gets = append(s.gets, req)
	s.runService()
	return req
}

// runService scans the full get-queue on every pass: a predicate waiter
// may become satisfiable due to an item a different waiter left behind,
// so, unlike Store, the enabling condition cannot be checked by just
// looking at the queue's head (spec.md §4.8).
func (s *FilterStore) runService() {
	runService(func() bool {
		progressed := false
		for len(s.puts) > 0 && len(s.items) < s.capacity {
			req := s.puts[0]
			s.puts = s.puts[1:]
			s.items = append(s.items, req.item)
			_ = req.Succeed(nil)
			s.env.Logger().Log(desim.LogEntry{
				Level:    desim.LevelDebug,
				Category: "resource",
				Time:     s.env.Now(),
				Message:  "filter store put admitted",
				Fields:   map[string]any{"count": len(s.items)},
			})
			progressed = true
		}
		for i := 0; i < len(s.gets); i++ {
			req := s.gets[i]
			idx := s.indexOfMatch(req.predicate)
			if idx < 0 {
				continue
			}
			item := s.items[idx]
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			s.gets = append(s.gets[:i], s.gets[i+1:]...)
			_ = req.Succeed(item)
			s.env.Logger().Log(desim.LogEntry{
				Level:    desim.LevelDebug,
				Category: "resource",
				Time:     s.env.Now(),
				Message:  "filter store get admitted",
				Fields:   map[string]any{"count": len(s.items)},
			})
			progressed = true
			i = -1 // rescan the get-queue from its head
		}
		return progressed
	})
}

func (s *FilterStore) indexOfMatch(predicate func(any) bool) int {
	for i, item := range s.items {
		if predicate(item) {
			return i
		}
	}
	return -1
}
