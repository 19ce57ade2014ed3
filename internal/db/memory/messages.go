package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/supplylink/core-service/internal/models"
)

// AppendMessage appends to the link's immutable log
func (s *Store) AppendMessage(ctx context.Context, m models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.NewString()
	m.CreatedAt = s.now()
	s.messages = append(s.messages, m)
	return m, nil
}

// ListMessages returns a page of the thread ordered by (created_at, id)
// ascending.
func (s *Store) ListMessages(ctx context.Context, linkID string, limit, offset int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var thread []models.Message
	for _, m := range s.messages {
		if m.LinkID == linkID {
			thread = append(thread, m)
		}
	}
	sort.Slice(thread, func(i, j int) bool {
		if thread[i].CreatedAt.Equal(thread[j].CreatedAt) {
			return thread[i].ID < thread[j].ID
		}
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})

	if offset >= len(thread) {
		return []models.Message{}, nil
	}
	end := offset + limit
	if end > len(thread) {
		end = len(thread)
	}
	return thread[offset:end], nil
}
