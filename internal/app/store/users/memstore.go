package userstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore keeps users in process memory. It offers the same guarantees as
// Store: unique mobile numbers and version-checked updates.
type MemStore struct {
	mu       sync.RWMutex
	byID     map[primitive.ObjectID]models.User
	byMobile map[string]primitive.ObjectID
}

// NewMem returns an empty in-memory store.
func NewMem() *MemStore {
	return &MemStore{
		byID:     make(map[primitive.ObjectID]models.User),
		byMobile: make(map[string]primitive.ObjectID),
	}
}

func (m *MemStore) Create(_ context.Context, u models.User) (models.User, error) {
	if err := prepare(&u); err != nil {
		return models.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byMobile[u.Mobile]; taken {
		return models.User{}, ErrDuplicateMobile
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 1

	m.byID[u.ID] = u.Clone()
	m.byMobile[u.Mobile] = u.ID
	return u, nil
}

func (m *MemStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := u.Clone()
	return &c, nil
}

func (m *MemStore) GetByMobile(_ context.Context, mobile string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byMobile[normalize.Mobile(mobile)]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.byID[id]
	c := u.Clone()
	return &c, nil
}

func (m *MemStore) Update(_ context.Context, u models.User) (models.User, error) {
	if err := prepare(&u); err != nil {
		return models.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.byID[u.ID]
	if !ok {
		return models.User{}, ErrNotFound
	}
	if cur.Version != u.Version {
		return models.User{}, ErrVersionConflict
	}
	if owner, taken := m.byMobile[u.Mobile]; taken && owner != u.ID {
		return models.User{}, ErrDuplicateMobile
	}

	u.Version++
	u.UpdatedAt = time.Now().UTC()
	delete(m.byMobile, cur.Mobile)
	m.byMobile[u.Mobile] = u.ID
	m.byID[u.ID] = u.Clone()
	return u, nil
}

func (m *MemStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byMobile, u.Mobile)
	delete(m.byID, id)
	return nil
}

func (m *MemStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byID)), nil
}

func (m *MemStore) List(_ context.Context, f ListFilter) ([]models.User, error) {
	q := text.Fold(f.Search)
	statuses := make(map[string]bool, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses[s] = true
	}

	out := m.collect(func(u *models.User) bool {
		if f.District != "" && u.District != f.District {
			return false
		}
		if len(statuses) > 0 && !statuses[u.Status] {
			return false
		}
		if q != "" && !strings.Contains(u.NameCI, q) && !strings.Contains(u.DesignationCI, q) {
			return false
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameCI != out[j].NameCI {
			return out[i].NameCI < out[j].NameCI
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (m *MemStore) ReviewQueue(_ context.Context, district string) ([]models.User, error) {
	out := m.collect(func(u *models.User) bool {
		if district != "" && u.District != district {
			return false
		}
		return u.Status == models.StatusPending || u.PendingChanges != nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemStore) StatusCounts(_ context.Context, district string) ([]StatusCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type key struct{ status, district string }
	counts := map[key]int64{}
	for _, u := range m.byID {
		if district != "" && u.District != district {
			continue
		}
		counts[key{u.Status, u.District}]++
	}
	out := make([]StatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, StatusCount{Status: k.status, District: k.district, N: n})
	}
	return out, nil
}

func (m *MemStore) collect(keep func(*models.User) bool) []models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.User
	for _, u := range m.byID {
		if keep(&u) {
			out = append(out, u.Clone())
		}
	}
	return out
}
