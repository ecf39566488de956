package walker

import (
	"context"
	"errors"
	"sort"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"github.com/ai8future/fieldcrypt/internal/store"
	"github.com/ai8future/fieldcrypt/models"
)

// fakeStore is an in-memory RecordStore. Updates are staged per batch and
// applied on Commit.
type fakeStore struct {
	mu         sync.Mutex
	collection models.Collection
	records    map[int64]*models.Record

	commits   int
	rollbacks int

	// failCommitAt makes the n-th Commit (1-based) fail.
	failCommitAt int
	// failUpdateID makes Update fail for that record id.
	failUpdateID int64
}

func newFakeStore(c models.Collection, records ...models.Record) *fakeStore {
	s := &fakeStore{collection: c, records: make(map[int64]*models.Record)}
	for i := range records {
		r := records[i]
		if r.Plain == nil {
			r.Plain = map[string]*string{}
		}
		if r.Encrypted == nil {
			r.Encrypted = map[string][]byte{}
		}
		if r.Index == nil {
			r.Index = map[string]string{}
		}
		s.records[r.ID] = &r
	}
	return s
}

func (s *fakeStore) Collection() models.Collection { return s.collection }

func (s *fakeStore) Begin(context.Context) (store.RecordBatch, error) {
	return &fakeBatch{store: s}, nil
}

func (s *fakeStore) CountByVersion(context.Context) (map[int]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[int]int64)
	for _, r := range s.records {
		counts[r.Version]++
	}
	return counts, nil
}

func (s *fakeStore) FindIDs(context.Context, sq.Sqlizer) ([]int64, error) {
	return nil, errors.New("not supported by fakeStore")
}

func (s *fakeStore) get(id int64) models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.records[id]
}

func (s *fakeStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *fakeStore) selectWhere(afterID int64, limit int, match func(*models.Record) bool) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Record
	for _, id := range s.sortedIDs() {
		if id <= afterID {
			continue
		}
		r := s.records[id]
		if !match(r) {
			continue
		}
		out = append(out, copyRecord(*r))
		if len(out) == limit {
			break
		}
	}
	return out
}

func copyRecord(r models.Record) models.Record {
	out := r
	out.Plain = make(map[string]*string, len(r.Plain))
	for k, v := range r.Plain {
		out.Plain[k] = v
	}
	out.Encrypted = make(map[string][]byte, len(r.Encrypted))
	for k, v := range r.Encrypted {
		out.Encrypted[k] = v
	}
	out.Index = make(map[string]string, len(r.Index))
	for k, v := range r.Index {
		out.Index[k] = v
	}
	return out
}

type fakeBatch struct {
	store   *fakeStore
	updates []models.RecordUpdate
	done    bool
}

func (b *fakeBatch) SelectPendingPlaintext(_ context.Context, afterID int64, limit int) ([]models.Record, error) {
	legacy := b.store.collection.LegacyFields()
	return b.store.selectWhere(afterID, limit, func(r *models.Record) bool {
		for _, f := range legacy {
			if r.HasPlain(f.Name) && !r.HasEncrypted(f.Name) {
				return true
			}
		}
		return false
	}), nil
}

func (b *fakeBatch) SelectByVersion(_ context.Context, version int, afterID int64, limit int) ([]models.Record, error) {
	return b.store.selectWhere(afterID, limit, func(r *models.Record) bool {
		return r.Version == version
	}), nil
}

func (b *fakeBatch) Update(_ context.Context, u models.RecordUpdate) error {
	if b.store.failUpdateID != 0 && u.ID == b.store.failUpdateID {
		return store.ErrExecutingStatement
	}
	b.updates = append(b.updates, u)
	return nil
}

func (b *fakeBatch) Commit() error {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	b.done = true
	s.commits++
	if s.failCommitAt != 0 && s.commits == s.failCommitAt {
		return store.ErrCommitingTransaction
	}

	for _, u := range b.updates {
		r := s.records[u.ID]
		r.Version = u.Version
		for _, f := range s.collection.Fields {
			if blob, ok := u.Encrypted[f.Name]; ok {
				if blob == nil {
					delete(r.Encrypted, f.Name)
				} else {
					r.Encrypted[f.Name] = blob
				}
				if f.Indexed() {
					if idx := u.Index[f.Name]; idx == "" {
						delete(r.Index, f.Name)
					} else {
						r.Index[f.Name] = idx
					}
				}
			}
		}
		for _, name := range u.NullPlain {
			delete(r.Plain, name)
		}
	}
	return nil
}

func (b *fakeBatch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	b.store.mu.Lock()
	b.store.rollbacks++
	b.store.mu.Unlock()
	return nil
}
