package meetingstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore keeps meetings in process memory.
type MemStore struct {
	mu       sync.RWMutex
	meetings map[primitive.ObjectID]models.Meeting
}

func NewMem() *MemStore {
	return &MemStore{meetings: make(map[primitive.ObjectID]models.Meeting)}
}

func (m *MemStore) Create(_ context.Context, mt models.Meeting) (models.Meeting, error) {
	if mt.ID.IsZero() {
		mt.ID = primitive.NewObjectID()
	}
	if mt.CreatedAt.IsZero() {
		mt.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.meetings[mt.ID] = mt
	m.mu.Unlock()
	return mt, nil
}

func (m *MemStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Meeting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.meetings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &mt, nil
}

func (m *MemStore) List(_ context.Context, district string) ([]models.Meeting, error) {
	m.mu.RLock()
	var out []models.Meeting
	for _, mt := range m.meetings {
		if district == "" || mt.VisibleTo(district) {
			out = append(out, mt)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.ID.Hex() > b.ID.Hex()
	})
	return out, nil
}
