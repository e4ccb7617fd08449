package services

import (
	"context"
	"errors"
	"sync"

	"sales-dashboard/storage"
)

// fakeStore is an in-memory DocumentStore with injectable failures.
type fakeStore struct {
	mu       sync.Mutex
	docs     map[string]storage.Document
	order    []string
	batches  [][]storage.Document
	failOn   map[int]int // batch call index -> remaining failures
	calls    int
	queryErr error
	block    chan struct{}
	queried  []storage.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]storage.Document{}, failOn: map[int]int{}}
}

func (f *fakeStore) QueryAll(ctx context.Context, _ string, _ storage.OrderBy) ([]storage.Document, error) {
	if f.block != nil {
		<-f.block
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queried, nil
}

func (f *fakeStore) BatchUpsert(_ context.Context, _ string, docs []storage.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := f.calls
	f.calls++
	if n := f.failOn[call]; n > 0 {
		f.failOn[call] = n - 1
		f.calls--
		return errors.New("store unavailable")
	}

	f.batches = append(f.batches, docs)
	for _, d := range docs {
		if _, ok := f.docs[d.ID]; !ok {
			f.order = append(f.order, d.ID)
		}
		f.docs[d.ID] = d
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }
