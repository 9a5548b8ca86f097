// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"

	apperrors "marketplace-notify/internal/common/errors"
	"marketplace-notify/internal/models"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and local runs. Per-record
// operations are atomic under a single mutex.
type Memory struct {
	mu      sync.Mutex
	records map[string]*models.NotificationRecord
	nextSeq int64
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]*models.NotificationRecord)}
}

func (m *Memory) Create(_ context.Context, rec *models.NotificationRecord) (*models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = uuid.New().String()
	m.nextSeq++
	stored.Seq = m.nextSeq

	m.records[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(id)
	}
	out := *rec
	return &out, nil
}

func (m *Memory) List(_ context.Context, f Filter) ([]models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.NotificationRecord
	for _, rec := range m.records {
		if rec.RecipientID != f.RecipientID {
			continue
		}
		if f.IsRead != nil && rec.IsRead != *f.IsRead {
			continue
		}
		out = append(out, *rec)
	}

	// Newest first; creation sequence breaks wall-clock ties.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

func (m *Memory) Update(_ context.Context, id string, p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return apperrors.NewNotFoundError(id)
	}
	if p.IsRead != nil {
		rec.IsRead = *p.IsRead
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return apperrors.NewNotFoundError(id)
	}
	delete(m.records, id)
	return nil
}

// Len reports how many records are held, across all recipients.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
