package poststore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore keeps posts in process memory.
type MemStore struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]models.Post
}

// NewMem returns an empty in-memory store.
func NewMem() *MemStore {
	return &MemStore{posts: make(map[primitive.ObjectID]models.Post)}
}

func (m *MemStore) Create(_ context.Context, p models.Post) (models.Post, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.posts[p.ID] = p
	m.mu.Unlock()
	return p, nil
}

func (m *MemStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemStore) ListRegular(_ context.Context, limit int) ([]models.Post, error) {
	out := m.newestFirst(func(p *models.Post) bool { return !p.IsNotice })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) ListNotices(_ context.Context) ([]models.Post, error) {
	return m.newestFirst(func(p *models.Post) bool { return p.IsNotice }), nil
}

func (m *MemStore) ListActiveNotices(_ context.Context, now time.Time) ([]models.Post, error) {
	return m.newestFirst(func(p *models.Post) bool { return p.IsActiveNotice(now) }), nil
}

func (m *MemStore) AddLikes(_ context.Context, id primitive.ObjectID, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return 0, ErrNotFound
	}
	if p.Likes+delta >= 0 {
		p.Likes += delta
		m.posts[id] = p
	}
	return p.Likes, nil
}

func (m *MemStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *MemStore) DeleteRegularBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, p := range m.posts {
		if !p.IsNotice && p.CreatedAt.Before(cutoff) {
			delete(m.posts, id)
			n++
		}
	}
	return n, nil
}

func (m *MemStore) newestFirst(keep func(*models.Post) bool) []models.Post {
	m.mu.RLock()
	var out []models.Post
	for _, p := range m.posts {
		if keep(&p) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}
